package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessString(a, b string) bool { return a < b }

func TestKeyedHeap_PushPeekPop(t *testing.T) {
	heap := NewKeyedHeap[string, string](lessString)
	assert.False(t, heap.Contains("key1"))
	assert.Equal(t, 0, heap.Len())

	require.NoError(t, heap.Push("key1", "value1"))
	assert.True(t, heap.Contains("key1"))
	v, ok := heap.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", v)
	assert.Equal(t, 1, heap.Len())

	key, value, err := heap.Peek()
	require.NoError(t, err)
	assert.Equal(t, "key1", key)
	assert.Equal(t, "value1", value)
	assert.Equal(t, 1, heap.Len())

	key, value, err = heap.Pop()
	require.NoError(t, err)
	assert.Equal(t, "key1", key)
	assert.Equal(t, "value1", value)
	assert.Equal(t, 0, heap.Len())
	assert.False(t, heap.Contains("key1"))
}

func TestKeyedHeap_Priority(t *testing.T) {
	heap := NewKeyedHeap[string, string](lessString)
	require.NoError(t, heap.Push("key2", "bar"))
	require.NoError(t, heap.Push("key1", "foo"))
	require.NoError(t, heap.Push("key3", "baz"))

	for _, expected := range []struct{ key, value string }{
		{"key1", "foo"}, {"key2", "bar"}, {"key3", "baz"},
	} {
		key, value, err := heap.Peek()
		require.NoError(t, err)
		assert.Equal(t, expected.key, key)
		assert.Equal(t, expected.value, value)

		key, value, err = heap.Pop()
		require.NoError(t, err)
		assert.Equal(t, expected.key, key)
		assert.Equal(t, expected.value, value)
	}
}

func TestKeyedHeap_EmptyErrors(t *testing.T) {
	heap := NewKeyedHeap[string, string](lessString)

	_, _, err := heap.Peek()
	assert.ErrorIs(t, err, ErrEmptyPriorityQueue)
	_, _, err = heap.Pop()
	assert.ErrorIs(t, err, ErrEmptyPriorityQueue)

	require.NoError(t, heap.Push("key1", "value1"))
	assert.ErrorIs(t, heap.Push("key1", "value2"), ErrDuplicateKey)

	_, _, err = heap.Pop()
	require.NoError(t, err)

	_, _, err = heap.Peek()
	assert.ErrorIs(t, err, ErrEmptyPriorityQueue)
}

func TestKeyedHeap_NonDestructiveIteration(t *testing.T) {
	heap := NewKeyedHeap[string, string](lessString)
	require.NoError(t, heap.Push("key2", "bar"))
	require.NoError(t, heap.Push("key1", "foo"))
	require.NoError(t, heap.Push("key3", "baz"))

	var keys []string
	var values []string
	for k, v := range heap.Items() {
		keys = append(keys, k)
		values = append(values, v)
	}
	assert.Equal(t, []string{"key1", "key2", "key3"}, keys)
	assert.Equal(t, []string{"foo", "bar", "baz"}, values)

	// Iteration must not have mutated the heap.
	assert.Equal(t, 3, heap.Len())
	key, _, err := heap.Peek()
	require.NoError(t, err)
	assert.Equal(t, "key1", key)
}
