package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/metrics"
)

// Event is one telemetry record.
type Event struct {
	Name      string         `json:"name"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	At        time.Time      `json:"at"`
	Fields    map[string]any `json:"fields,omitempty"`
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Sink accepts events without blocking the caller. Failures stay inside the sink.
type Sink interface {
	Emit(Event)
}

// NopSink discards events.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(Event) {}

// Publisher delivers one event. Errors are logged and dropped.
type Publisher func(ctx context.Context, e Event) error

// LogPublisher writes events through logger.
func LogPublisher(logger *zap.Logger) Publisher {
	return func(_ context.Context, e Event) error {
		logger.Info("telemetry event",
			zap.String("event", e.Name),
			zap.String("user_id", e.UserID),
			zap.String("request_id", e.RequestID),
			zap.Time("at", e.At),
			zap.Any("fields", e.Fields),
		)
		return nil
	}
}

// BufferedSink queues events on a bounded channel drained by one goroutine.
// A full queue drops the event and counts it.
type BufferedSink struct {
	publish Publisher
	logger  *zap.Logger
	timeout time.Duration

	events  chan Event
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewBufferedSink starts the drain goroutine. Call Close to stop it.
func NewBufferedSink(publish Publisher, size int, logger *zap.Logger) *BufferedSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 256
	}
	s := &BufferedSink{
		publish: publish,
		logger:  logger,
		timeout: 2 * time.Second,
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
	go s.drain()
	return s
}

// Emit enqueues e or drops it when the queue is full or closed.
func (s *BufferedSink) Emit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop()
		return
	}
	select {
	case s.events <- e:
	default:
		s.drop()
	}
}

// Dropped returns how many events were discarded.
func (s *BufferedSink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *BufferedSink) drop() {
	s.dropped.Add(1)
	metrics.IncTelemetryDropped()
}

// Close stops accepting events and waits for queued ones to be delivered or
// for ctx to expire.
func (s *BufferedSink) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *BufferedSink) drain() {
	defer close(s.done)
	for e := range s.events {
		s.deliver(e)
	}
}

func (s *BufferedSink) deliver(e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("telemetry publisher panicked", zap.Any("panic", r), zap.String("event", e.Name))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.publish(ctx, e); err != nil {
		s.logger.Warn("telemetry publish failed", zap.String("event", e.Name), zap.Error(err))
	}
}
