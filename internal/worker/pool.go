// Package worker runs a fixed pool of goroutines that drain a shared queue.
package worker

import (
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/grape/internal/queue"
)

// Logger receives worker lifecycle messages and recovered panics.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Pool is a fixed number of workers sharing one queue.
type Pool struct {
	workers int
	logger  Logger
}

// NewPool creates a pool of n workers. n <= 0 selects runtime.GOMAXPROCS(0).
// The logger is optional and can be nil.
func NewPool(n int, logger Logger) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: n, logger: logger}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Run starts the pool's workers on q and blocks until q is closed and
// drained. Each worker loops taking the next item and calling handle on it.
// A panic in handle is logged and the worker moves on, so one bad item never
// takes down its siblings.
func Run[T any](p *Pool, q *queue.SharedQueue[T], handle func(T)) {
	var g errgroup.Group
	for id := 0; id < p.workers; id++ {
		id := id
		g.Go(func() error {
			processed := 0
			for {
				item, ok := q.Next()
				if !ok {
					p.debugf("worker %d exiting after %d item(s)", id, processed)
					return nil
				}
				safeHandle(p, id, item, handle)
				processed++
			}
		})
	}
	// Workers never fail; Wait is only the join point.
	_ = g.Wait()
}

func safeHandle[T any](p *Pool, id int, item T, handle func(T)) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Errorf("worker %d: panic on %v: %v\n%s", id, item, r, debug.Stack())
			}
		}
	}()
	handle(item)
}

func (p *Pool) debugf(format string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debugf(format, args...)
	}
}
