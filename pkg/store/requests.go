package store

import (
	"github.com/spf13/cast"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/dispatch"
)

type Status string

const (
	StatusPending   = Status("pending")
	StatusSucceeded = Status("succeeded")
	StatusFailed    = Status("failed")
)

// Request is the state of the last request for one resource identifier.
type Request struct {
	Resource string      `json:"resource"`
	ID       any         `json:"id,omitempty"`
	Kind     action.Kind `json:"kind"`
	Status   Status      `json:"status"`
	Data     any         `json:"data,omitempty"`
	Err      error       `json:"-"`
}

// Requests state, see RequestKey.
type Requests map[string]Request

// RequestKey returns "resource/id", or only "resource" if the id is not set.
func RequestKey(resource string, id any) string {
	if id == nil {
		return resource
	}
	return resource + "/" + cast.ToString(id)
}

// NewRequests returns a Memory store with the ReduceRequests reducer.
func NewRequests() *Memory {
	return NewMemory(Requests{}, ReduceRequests)
}

// ReduceRequests tracks the status of requests.
// A "started" notification is recognized by the Pending result, so custom notification types are supported.
func ReduceRequests(state any, n dispatch.Notification) any {
	old, _ := state.(Requests)
	out := make(Requests, len(old)+1)
	for k, v := range old {
		out[k] = v
	}

	key := RequestKey(n.Resource, n.ID)
	r := Request{Resource: n.Resource, ID: n.ID, Kind: n.Kind}
	switch {
	case n.Pending != nil:
		r.Status = StatusPending
		// Keep the last data during reload
		r.Data = old[key].Data
	case n.Err != nil:
		r.Status = StatusFailed
		r.Err = n.Err
	default:
		r.Status = StatusSucceeded
		r.Data = n.Data
	}
	if n.Kind == action.Destroy && r.Status == StatusSucceeded {
		delete(out, key)
		return out
	}
	out[key] = r
	return out
}

// ErrorMessage returns the error message, or an empty string.
func (r Request) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
