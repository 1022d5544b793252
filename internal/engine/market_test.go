package engine

import (
	"testing"

	"fenrir/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(price float64) *float64 { return &price }
func ts(t float64) *float64    { return &t }

func executionPrices(executions []*Execution) []float64 {
	out := make([]float64, len(executions))
	for i, e := range executions {
		out[i] = *e.Price
	}
	return out
}

func executionQuantities(executions []*Execution) []int64 {
	out := make([]int64, len(executions))
	for i, e := range executions {
		out[i] = e.Quantity
	}
	return out
}

// Scenario 1: limit-market fill.
func TestMarket_LimitMarketFill(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(120), nil, ""))
	executions, err := m.ExecuteOrder(common.Sell, "ABC", 10, nil, nil, "")
	require.NoError(t, err)

	require.Len(t, executions, 1)
	assert.Equal(t, int64(10), executions[0].Quantity)
	assert.Equal(t, 120.0, *executions[0].Price)

	product := m.GetProduct("ABC")
	assert.Equal(t, 120.0, *product.LastPrice())
	assert.Nil(t, product.BidPrice())
	assert.Nil(t, product.AskPrice())
}

// Scenario 2: crossing limits settle at the midpoint.
func TestMarket_CrossingLimitsMidpoint(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(130), nil, ""))
	executions, err := m.ExecuteOrder(common.Sell, "ABC", 10, p(110), nil, "")
	require.NoError(t, err)

	require.Len(t, executions, 1)
	assert.Equal(t, int64(10), executions[0].Quantity)
	assert.Equal(t, 120.0, *executions[0].Price)
	assert.Equal(t, 120.0, *m.GetProduct("ABC").LastPrice())
}

// Scenario 3: a market buy sweeps across two sell price levels.
func TestMarket_PartialSweepAcrossLevels(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 40, p(130), nil, ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 80, p(130), nil, ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 10, p(120), nil, ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 20, p(120), nil, ""))

	executions, err := m.ExecuteOrder(common.Buy, "ABC", 45, nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20, 15}, executionQuantities(executions))
	for _, price := range executionPrices(executions) {
		assert.Equal(t, 130.0, price)
	}

	product := m.GetProduct("ABC")
	assert.Equal(t, 130.0, *product.LastPrice())
	assert.Equal(t, 130.0, *product.AskPrice())
	assert.Nil(t, product.BidPrice())

	ask, err := product.OrderQueue(common.Sell)
	require.NoError(t, err)
	book := ask.GetOrderBook()
	require.Len(t, book, 1)
	assert.Equal(t, 130.0, *book[0].Price)
	assert.Equal(t, int64(105), book[0].Volume)
	assert.Equal(t, 2, book[0].Count)
}

// Scenario 4: batch call auction with a pro-rata split inside the
// crossed bucket.
func TestMarket_BatchCallAuctionProRata(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 40, p(130), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 80, p(130), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 10, p(120), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 20, p(120), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 45, nil, ts(0), ""))

	executions, err := m.Execute(nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 20, 5, 10}, executionQuantities(executions))
	for _, price := range executionPrices(executions) {
		assert.Equal(t, 130.0, price)
	}
	assert.Equal(t, 130.0, *m.GetProduct("ABC").LastPrice())
}

// Scenario 5: auction infeasible — market vs market only.
func TestMarket_AuctionInfeasible_MarketVsMarket(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 10, nil, ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, nil, ts(0), ""))

	executions, err := m.Execute(nil)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

// Scenario 6: auction infeasible — limit spread with markets present.
func TestMarket_AuctionInfeasible_LimitSpreadWithMarkets(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 10, p(130), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(110), ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Sell, "ABC", 10, nil, ts(0), ""))
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, nil, ts(0), ""))

	executions, err := m.Execute(nil)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestMarket_PlaceCancelRoundTrip(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(100), nil, "o1"))

	product := m.GetProduct("ABC")
	bid, err := product.OrderQueue(common.Buy)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bid.Volume())
	assert.Equal(t, 1, bid.Count())

	require.NoError(t, m.CancelOrder("o1"))
	assert.Equal(t, int64(0), bid.Volume())
	assert.Equal(t, 0, bid.Count())
}

func TestMarket_CancelErrors(t *testing.T) {
	m := NewMarket()
	assert.ErrorIs(t, m.CancelOrder("missing"), ErrNoSuchOrderID)

	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(100), nil, "o1"))
	require.NoError(t, m.CancelOrder("o1"))
	assert.ErrorIs(t, m.CancelOrder("o1"), ErrAlreadyCancelled)
}

func TestMarket_PlaceDuplicateID(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(100), nil, "o1"))
	assert.ErrorIs(t, m.PlaceOrder(common.Sell, "ABC", 5, p(100), nil, "o1"), ErrDuplicateOrderID)
}

func TestMarket_GetOrderByID(t *testing.T) {
	m := NewMarket()
	require.NoError(t, m.PlaceOrder(common.Buy, "ABC", 10, p(100), nil, ""))

	var id string
	for orderID := range m.entries {
		id = orderID
	}
	require.NotEmpty(t, id)

	order, ok := m.GetOrderByID(id)
	require.True(t, ok)
	assert.Equal(t, int64(10), order.Quantity)

	_, ok = m.GetOrderByID("does-not-exist")
	assert.False(t, ok)
}
