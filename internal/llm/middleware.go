package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Logging --------

// WithLogging logs call sizes, latency and errors. A nil logger uses slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger.With("component", "llm", "client", next.Name())}
	}
}

type logging struct {
	next Client
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	start := time.Now()
	phase := PhaseFrom(ctx)
	l.log.DebugContext(ctx, "llm_request", "phase", phase, "bytes", len(req.System)+len(req.Prompt))
	raw, err := l.next.GenerateJSON(ctx, req)
	if err != nil {
		l.log.WarnContext(ctx, "llm_error", "phase", phase, "error", err, "elapsed", time.Since(start))
		return raw, err
	}
	l.log.DebugContext(ctx, "llm_response", "phase", phase, "bytes", len(raw), "elapsed", time.Since(start))
	return raw, nil
}

func (l *logging) StartImageSession(ctx context.Context) (ImageSession, error) {
	s, err := l.next.StartImageSession(ctx)
	if err != nil {
		l.log.WarnContext(ctx, "llm_session_error", "phase", PhaseFrom(ctx), "error", err)
		return nil, err
	}
	return &loggingSession{next: s, log: l.log}, nil
}

type loggingSession struct {
	next ImageSession
	log  *slog.Logger
	turn int
}

func (s *loggingSession) Send(ctx context.Context, prompt string) (Image, error) {
	s.turn++
	start := time.Now()
	img, err := s.next.Send(ctx, prompt)
	if err != nil {
		s.log.WarnContext(ctx, "llm_image_error", "turn", s.turn, "error", err, "elapsed", time.Since(start))
		return img, err
	}
	s.log.DebugContext(ctx, "llm_image", "turn", s.turn, "bytes", len(img.Data), "mime", img.MIMEType, "elapsed", time.Since(start))
	return img, nil
}
