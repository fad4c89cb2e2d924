// Package comic renders a storyboard into page images, one page at a time,
// inside a single image-generation session.
package comic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vulncomics/internal/llm"
	"vulncomics/internal/types"
)

// Uploader stores a page image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// PageError reports the page at which rendering stopped.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string { return fmt.Sprintf("comic: page %d: %v", e.Page, e.Err) }
func (e *PageError) Unwrap() error { return e.Err }

var ErrEmptyStoryboard = errors.New("comic: storyboard has no pages")

type Renderer struct {
	llm         llm.Client
	store       Uploader
	policy      llm.Policy
	frontendURL string
	now         func() time.Time
	log         *slog.Logger
}

type Option func(*Renderer)

// WithPolicy overrides the per-page retry policy.
func WithPolicy(p llm.Policy) Option { return func(r *Renderer) { r.policy = p } }

// WithClock overrides the time source used for hashes and timestamps.
func WithClock(now func() time.Time) Option { return func(r *Renderer) { r.now = now } }

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRenderer(client llm.Client, store Uploader, frontendURL string, opts ...Option) *Renderer {
	r := &Renderer{
		llm:         client,
		store:       store,
		policy:      llm.DefaultPolicy(),
		frontendURL: frontendURL,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.With("component", "comic")
	return r
}

// Render generates every page in order within one session. Any page failure
// aborts the comic with a *PageError; pages already stored are left as is.
func (r *Renderer) Render(ctx context.Context, sb types.Storyboard) (types.Comic, error) {
	total := len(sb.Pages)
	if total == 0 {
		return types.Comic{}, ErrEmptyStoryboard
	}
	notify := progressFrom(ctx)
	hash := Hash(sb.Title, r.now())
	notify(Event{State: StateNotStarted, Hash: hash, Total: total})
	r.log.InfoContext(ctx, "comic_generation_started", "comic_hash", hash, "title", sb.Title, "pages", total)

	session, err := r.llm.StartImageSession(llm.WithPhase(ctx, llm.PhaseComicPage))
	if err != nil {
		return types.Comic{}, r.fail(ctx, notify, hash, total, 1, fmt.Errorf("start session: %w", err))
	}

	pages := make([]types.GeneratedPage, 0, total)
	for n := 1; n <= total; n++ {
		notify(Event{State: StateRendering, Hash: hash, Page: n, Total: total})
		url, err := r.renderPage(ctx, session, sb, hash, n)
		if err != nil {
			return types.Comic{}, r.fail(ctx, notify, hash, total, n, err)
		}
		pages = append(pages, types.GeneratedPage{PageNumber: n, ImageURL: url})
		notify(Event{State: StateRendering, Hash: hash, Page: n, Total: total, ImageURL: url})
		r.log.InfoContext(ctx, "page_generated", "comic_hash", hash, "page", n, "total", total)
	}

	comic := types.Comic{
		Hash:        hash,
		Title:       sb.Title,
		Archetype:   sb.Archetype,
		ArtStyle:    sb.ArtStyle,
		PageCount:   total,
		TotalPanels: sb.TotalPanels(),
		Pages:       pages,
		ShareURL:    ShareURL(r.frontendURL, hash),
		GeneratedAt: r.now().UTC(),
	}
	notify(Event{State: StateComplete, Hash: hash, Total: total})
	r.log.InfoContext(ctx, "comic_complete", "comic_hash", hash, "title", sb.Title, "pages", total, "total_panels", comic.TotalPanels)
	return comic, nil
}

func (r *Renderer) renderPage(ctx context.Context, session llm.ImageSession, sb types.Storyboard, hash string, n int) (string, error) {
	prompt := PagePrompt(sb, n)
	policy := r.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		r.log.WarnContext(ctx, "page_retry", "comic_hash", hash, "page", n, "attempt", attempt, "wait", wait, "error", err)
	}
	var img llm.Image
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		img, err = session.Send(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(img.Data) == 0 {
		return "", llm.NewPermanentError(llm.ErrNoImage)
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	path := PagePath(hash, n, img.Data, mime)
	url, err := r.store.Upload(ctx, path, img.Data, mime)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	r.log.DebugContext(ctx, "page_uploaded", "page", n, "path", path, "size_bytes", len(img.Data))
	return url, nil
}

func (r *Renderer) fail(ctx context.Context, notify ProgressFunc, hash string, total, page int, err error) error {
	pe := &PageError{Page: page, Err: err}
	r.log.ErrorContext(ctx, "page_generation_failed", "comic_hash", hash, "page", page, "error", err)
	notify(Event{State: StateFailed, Hash: hash, Page: page, Total: total, Err: pe})
	return pe
}
