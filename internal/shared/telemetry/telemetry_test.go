package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("json", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	logger, err := NewLogger("console", "debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestBufferedSinkDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	sink := NewBufferedSink(func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Name)
		return nil
	}, 8, zap.NewNop())
	sink.Emit(Event{Name: "a"})
	sink.Emit(Event{Name: "b"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	require.Equal(t, []string{"a", "b"}, got)
}

func TestBufferedSinkNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	sink := NewBufferedSink(func(ctx context.Context, e Event) error {
		<-block
		return errors.New("late")
	}, 1, zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sink.Emit(Event{Name: "run"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Emit blocked on a stuck publisher")
	}
	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sink.Close(ctx))
	require.GreaterOrEqual(t, sink.Dropped(), int64(8))

	sink.Emit(Event{Name: "after-close"})
	require.GreaterOrEqual(t, sink.Dropped(), int64(9))
}

func TestRequestIDRoundTripsThroughContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")
	require.Equal(t, "req-7", RequestID(ctx))
	require.Empty(t, RequestID(context.Background()))
	require.Equal(t, context.Background(), WithRequestID(context.Background(), ""))
}
