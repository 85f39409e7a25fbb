package dispatch

import (
	"context"
	"sync"
)

// Pending is the in-flight result of one dispatched request.
// It is settled exactly once, with data or with an error.
type Pending struct {
	done chan struct{}
	once *sync.Once
	data any
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{}), once: &sync.Once{}}
}

// rejected returns an already settled Pending with the error.
func rejected(err error) *Pending {
	p := newPending()
	p.settle(nil, err)
	return p
}

func (p *Pending) settle(data any, err error) {
	p.once.Do(func() {
		p.data = data
		p.err = err
		close(p.done)
	})
}

// Done is closed when the Pending is settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the Pending is settled or the ctx is done.
// The ctx bounds only the waiting, the request itself is not cancelled.
func (p *Pending) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.data, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the data and the error without blocking, settled is false if the request is still in progress.
func (p *Pending) Result() (data any, settled bool, err error) {
	select {
	case <-p.done:
		return p.data, true, p.err
	default:
		return nil, false, nil
	}
}
