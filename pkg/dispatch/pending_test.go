package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/dispatch"
	"github.com/keboola/go-resource-fetch/pkg/fetch"
)

// settlementStore records whether the Pending was settled when "finished" was dispatched.
type settlementStore struct {
	*recordingStore
	settledOnFinished chan bool
}

func (s *settlementStore) Dispatch(n dispatch.Notification) {
	s.recordingStore.Dispatch(n)
	if n.Type == "LOAD_FINISHED" {
		_, settled, _ := s.recordingStore.Notifications()[0].Pending.Result()
		s.settledOnFinished <- settled
	}
}

func TestPending_SettledAfterFinished(t *testing.T) {
	t.Parallel()

	store := &settlementStore{recordingStore: newRecordingStore(nil), settledOnFinished: make(chan bool, 1)}
	d, err := dispatch.New(store, executorFunc(func(ctx context.Context, req fetch.Request) (any, error) {
		return "data", nil
	}))
	require.NoError(t, err)

	pending := d.Dispatch(context.Background(), dispatch.Request{Resource: "users", Kind: action.Load})
	data, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "data", data)
	assert.False(t, <-store.settledOnFinished)
}

func TestPending_WaitCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	d, err := dispatch.New(newRecordingStore(nil), executorFunc(func(ctx context.Context, req fetch.Request) (any, error) {
		<-release
		return nil, nil
	}))
	require.NoError(t, err)

	pending := d.Dispatch(context.Background(), dispatch.Request{Resource: "users", Kind: action.Load})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pending.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-pending.Done():
		assert.Fail(t, "pending must not be settled")
	default:
	}

	close(release)
	<-pending.Done()
}
