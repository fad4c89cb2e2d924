package llm

import (
	"context"
	"encoding/json"
)

// Retry retries GenerateJSON under p. Image sessions are not retried here:
// a failed turn is retried by the caller that owns the session so the
// retry stays inside the same generation context.
func Retry(p Policy) Middleware {
	return func(next Client) Client {
		return &retrying{next: next, policy: p}
	}
}

type retrying struct {
	next   Client
	policy Policy
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		raw, err := r.next.GenerateJSON(ctx, req)
		if err != nil {
			return err
		}
		out = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retrying) StartImageSession(ctx context.Context) (ImageSession, error) {
	return r.next.StartImageSession(ctx)
}
