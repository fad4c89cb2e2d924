package comic

import "context"

// State is the renderer's position in NOT_STARTED -> RENDERING -> COMPLETE|FAILED.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateRendering  State = "RENDERING"
	StateComplete   State = "COMPLETE"
	StateFailed     State = "FAILED"
)

// Event reports one transition. Page is set while rendering and on failure;
// ImageURL is set once that page is stored.
type Event struct {
	State    State
	Hash     string
	Page     int
	Total    int
	ImageURL string
	Err      error
}

type ProgressFunc func(Event)

type ctxKeyProgress struct{}

// WithProgress attaches an observer notified synchronously on each transition.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, ctxKeyProgress{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(ctxKeyProgress{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(Event) {}
}
