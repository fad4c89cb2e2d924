package llm

import "context"

type ctxKeyPhase struct{}

// WithPhase labels calls made with ctx, for logs and the fake client.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

func PhaseFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyPhase{}).(string); ok {
		return v
	}
	return ""
}
