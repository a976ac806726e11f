package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

// Span times one unit of work (a request, a fetch, a normalize pass). Spans
// nest through the context and share the root trace id.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	StartTime time.Time
	Duration  time.Duration
	Attrs     []slog.Attr
	Status    SpanStatus
	Err       error
}

type spanContextKey struct{}

func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		TraceID:   uuid.NewString(),
		SpanID:    uuid.NewString(),
		Operation: operation,
		StartTime: time.Now(),
		Status:    SpanStatusOK,
	}

	if parent := GetSpan(ctx); parent != nil {
		span.ParentID = parent.SpanID
		span.TraceID = parent.TraceID
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *Span) SetAttr(key string, value any) {
	s.Attrs = append(s.Attrs, slog.Any(key, value))
}

func (s *Span) SetError(err error) {
	if err == nil {
		return
	}
	s.Status = SpanStatusError
	s.Err = err
}

// End stamps the duration and emits the span at debug level, or at warn
// when the span failed.
func (s *Span) End(logger *slog.Logger) {
	s.Duration = time.Since(s.StartTime)
	if logger == nil {
		return
	}

	attrs := append([]slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("parent_id", s.ParentID),
		slog.String("operation", s.Operation),
		slog.Duration("duration", s.Duration),
		slog.String("status", string(s.Status)),
	}, s.Attrs...)

	level := slog.LevelDebug
	if s.Status == SpanStatusError {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", s.Err))
	}

	logger.LogAttrs(context.Background(), level, "span finished", attrs...)
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}
