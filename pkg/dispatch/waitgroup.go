package dispatch

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// WaitGroup waits until all added Pending results are settled.
//
// A failure does not stop the other requests.
// Wait method at the end returns all errors that have occurred, if any.
type WaitGroup struct {
	ctx context.Context
	wg  *sync.WaitGroup

	lock *sync.Mutex // for err
	err  *multierror.Error
}

// NewWaitGroup creates new WaitGroup, the ctx bounds only the waiting.
func NewWaitGroup(ctx context.Context) *WaitGroup {
	return &WaitGroup{ctx: ctx, wg: &sync.WaitGroup{}, lock: &sync.Mutex{}}
}

// Add a Pending result to wait for.
func (g *WaitGroup) Add(p *Pending) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if _, err := p.Wait(g.ctx); err != nil {
			g.lock.Lock()
			defer g.lock.Unlock()
			g.err = multierror.Append(g.err, err)
		}
	}()
}

// Wait for all Pending results. All errors that have occurred will be returned.
func (g *WaitGroup) Wait() error {
	g.wg.Wait()
	// If there is only one error, then unwrap multierror
	if g.err != nil && len(g.err.Errors) == 1 {
		return g.err.Errors[0]
	}
	return g.err.ErrorOrNil()
}
