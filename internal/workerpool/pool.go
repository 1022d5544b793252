// Package workerpool runs a fixed-size pool of tomb-supervised workers
// draining a shared task channel, in the style used throughout fenrir's
// server components.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// Func processes a single task. A non-nil error kills the tomb and is
// propagated to every other worker via t.Dying().
type Func[T any] func(t *tomb.Tomb, task T) error

// Pool is a fixed-size pool of workers pulling from a shared task
// channel. It is not safe to Setup the same Pool twice.
type Pool[T any] struct {
	size  int
	tasks chan T
}

// New returns a pool with size workers and a buffered task channel.
func New[T any](size int) *Pool[T] {
	return &Pool[T]{
		size:  size,
		tasks: make(chan T, taskChanSize),
	}
}

// AddTask enqueues a task for the next free worker. It blocks if the
// task channel is full.
func (p *Pool[T]) AddTask(task T) {
	p.tasks <- task
}

// Setup starts size workers under t, each running work against tasks
// pulled off the shared channel. Setup blocks until t is dying, so it
// must be run from its own t.Go goroutine.
func (p *Pool[T]) Setup(t *tomb.Tomb, work Func[T]) {
	log.Info().Int("workers", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		t.Go(func() error {
			return p.worker(t, work)
		})
	}
	<-t.Dying()
}

func (p *Pool[T]) worker(t *tomb.Tomb, work Func[T]) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
