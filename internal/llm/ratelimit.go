package llm

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"
)

// RateLimit caps outgoing calls at rpm requests per minute with the given
// burst. Every GenerateJSON call and every image-session turn takes a token.
// rpm <= 0 disables the limiter.
func RateLimit(rpm float64, burst int) Middleware {
	return func(next Client) Client {
		if rpm <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimited{next: next, lim: rate.NewLimiter(rate.Limit(rpm/60.0), burst)}
	}
}

type rateLimited struct {
	next Client
	lim  *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return c.next.GenerateJSON(ctx, req)
}

func (c *rateLimited) StartImageSession(ctx context.Context) (ImageSession, error) {
	s, err := c.next.StartImageSession(ctx)
	if err != nil {
		return nil, err
	}
	return &rateLimitedSession{next: s, lim: c.lim}, nil
}

type rateLimitedSession struct {
	next ImageSession
	lim  *rate.Limiter
}

func (s *rateLimitedSession) Send(ctx context.Context, prompt string) (Image, error) {
	if err := s.lim.Wait(ctx); err != nil {
		return Image{}, err
	}
	return s.next.Send(ctx, prompt)
}
