package dispatch

import (
	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

// Notification is a lifecycle message delivered to the Store.
//
// The "started" notification carries the Pending result.
// The "finished" notification carries the Data on success or the Err on failure.
type Notification struct {
	Type     action.Type
	Kind     action.Kind
	Resource string
	ID       any
	Opts     options.Options
	Pending  *Pending
	Data     any
	Err      error
}

// Store receives notifications and provides a snapshot of the application state.
//
// Dispatch must not block waiting for the notification's Pending,
// the Pending is settled only after the "finished" notification is dispatched.
type Store interface {
	Dispatch(n Notification)
	State() any
}

// StoreFunc adapts a function to the Store interface, with a nil state.
type StoreFunc func(n Notification)

func (f StoreFunc) Dispatch(n Notification) {
	f(n)
}

func (f StoreFunc) State() any {
	return nil
}
