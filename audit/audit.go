// Package audit provides structured audit logging for image requests.
//
// Logger implements ogimage.RequestObserver. Events never carry the signing
// secret or the signed token.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	ogimage "github.com/chimerakang/ogimage-go"
)

// Event represents an image request audit event.
type Event struct {
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
	Issuer     string        `json:"issuer,omitempty"`
	Subject    string        `json:"subject,omitempty"`
	Path       string        `json:"path,omitempty"`
	Template   string        `json:"template,omitempty"`
	JSON       bool          `json:"json,omitempty"`
	Outcome    string        `json:"outcome"` // success, http_error, timeout, etc.
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
}

// Handler processes audit events. Implementations should not block.
type Handler func(event Event)

// Logger emits audit events to configured handlers.
type Logger struct {
	handlers []Handler
	queue    chan Event
	done     chan struct{}
	closed   sync.Once
	wg       sync.WaitGroup
	dropped  atomic.Int64
}

var _ ogimage.RequestObserver = (*Logger)(nil)

// Option configures Logger behavior.
type Option func(*Logger)

// WithStdoutHandler adds a handler that writes JSON events to stdout.
func WithStdoutHandler() Option {
	return WithWriterHandler(os.Stdout)
}

// WithWriterHandler adds a handler that writes one JSON event per line to w.
func WithWriterHandler(w io.Writer) Option {
	return func(l *Logger) {
		l.AddHandler(func(e Event) {
			data, _ := json.Marshal(e)
			fmt.Fprintf(w, "%s\n", data)
		})
	}
}

// WithSlogHandler adds a handler that logs each event through logger.
// Failed requests are logged at warn level.
func WithSlogHandler(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.AddHandler(func(e Event) {
			level := slog.LevelInfo
			if e.Outcome != ogimage.OutcomeSuccess {
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("outcome", e.Outcome),
				slog.String("issuer", e.Issuer),
				slog.String("path", e.Path),
				slog.Duration("duration", e.Duration),
			}
			if e.RequestID != "" {
				attrs = append(attrs, slog.String("request_id", e.RequestID))
			}
			if e.Template != "" {
				attrs = append(attrs, slog.String("template", e.Template))
			}
			if e.StatusCode != 0 {
				attrs = append(attrs, slog.Int("status", e.StatusCode))
			}
			if e.Error != "" {
				attrs = append(attrs, slog.String("error", e.Error))
			}
			logger.LogAttrs(context.Background(), level, "ogimage audit", attrs...)
		})
	}
}

// WithHandler adds a custom event handler.
func WithHandler(h Handler) Option {
	return func(l *Logger) {
		l.AddHandler(h)
	}
}

// New creates a new audit logger with buffered async emission.
// bufferSize: event queue buffer size (default: 1000).
func New(bufferSize int, opts ...Option) *Logger {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	logger := &Logger{
		handlers: make([]Handler, 0),
		queue:    make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(logger)
	}

	// Start async event processor
	logger.wg.Add(1)
	go logger.process()

	return logger
}

// AddHandler adds a handler to receive audit events. Call before the first Log.
func (l *Logger) AddHandler(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Log emits an audit event asynchronously. It never blocks: when the queue
// is full the event is dropped and counted in Dropped.
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-l.done:
		// Logger is shutting down, event is dropped
		return
	default:
	}

	select {
	case l.queue <- event:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (l *Logger) Dropped() int64 { return l.dropped.Load() }

// ObserveImageRequest converts ev into an Event and logs it. The request ID
// is taken from ctx when present.
func (l *Logger) ObserveImageRequest(ctx context.Context, ev ogimage.RequestEvent) {
	e := Event{
		RequestID:  RequestID(ctx),
		Issuer:     ev.Issuer,
		Subject:    ev.Subject,
		Path:       ev.Path,
		Template:   ev.Template,
		JSON:       ev.JSON,
		Outcome:    ev.Outcome,
		StatusCode: ev.StatusCode,
		Duration:   ev.Duration,
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	l.Log(e)
}

// process handles events from the queue.
func (l *Logger) process() {
	defer l.wg.Done()

	for {
		select {
		case event := <-l.queue:
			l.emit(event)
		case <-l.done:
			// Drain remaining events
			for {
				select {
				case event := <-l.queue:
					l.emit(event)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) emit(event Event) {
	for _, h := range l.handlers {
		h(event)
	}
}

// Close flushes pending events and stops the logger. It is safe to call
// more than once.
func (l *Logger) Close() error {
	l.closed.Do(func() { close(l.done) })
	l.wg.Wait()
	return nil
}

// RequestID retrieves the request ID from context.
func RequestID(ctx context.Context) string {
	id, ok := ctx.Value(contextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return id
}

// WithRequestID stores the request ID in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

type contextKey string

const (
	contextKeyRequestID contextKey = "audit.request_id"
)
