// Package pipeline wires the scan, story, storyboard and comic stages into
// the three operations the API exposes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vulncomics/internal/apperr"
	"vulncomics/internal/comic"
	"vulncomics/internal/comicindex"
	"vulncomics/internal/llm"
	"vulncomics/internal/manifest"
	"vulncomics/internal/story"
	"vulncomics/internal/types"
)

type Scanner interface {
	Scan(ctx context.Context, pkgs []types.Package) types.ScanResult
}

type StoryWriter interface {
	Active(ctx context.Context, vulns []types.Vulnerability, max int) []types.StoryCard
	Historical(ctx context.Context, clean []types.Package, max int) []types.StoryCard
}

type Planner interface {
	Plan(ctx context.Context, card types.StoryCard) (types.Storyboard, error)
}

type Renderer interface {
	Render(ctx context.Context, sb types.Storyboard) (types.Comic, error)
}

type Config struct {
	MaxActive      int
	MaxHistorical  int
	MaxUploadBytes int64
}

func DefaultConfig() Config {
	return Config{
		MaxActive:      story.DefaultMaxActive,
		MaxHistorical:  story.DefaultMaxHistorical,
		MaxUploadBytes: manifest.MaxSize,
	}
}

type Deps struct {
	Scanner  Scanner
	Stories  StoryWriter
	Planner  Planner
	Renderer Renderer
	Index    comicindex.Store
	Logger   *slog.Logger
}

type Service struct {
	scanner  Scanner
	stories  StoryWriter
	planner  Planner
	renderer Renderer
	index    comicindex.Store
	cfg      Config
	log      *slog.Logger
}

func New(d Deps, cfg Config) (*Service, error) {
	if d.Scanner == nil || d.Stories == nil || d.Planner == nil || d.Renderer == nil || d.Index == nil {
		return nil, fmt.Errorf("pipeline: scanner, stories, planner, renderer and index are required")
	}
	def := DefaultConfig()
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = def.MaxActive
	}
	if cfg.MaxHistorical <= 0 {
		cfg.MaxHistorical = def.MaxHistorical
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		scanner:  d.Scanner,
		stories:  d.Stories,
		planner:  d.Planner,
		renderer: d.Renderer,
		index:    d.Index,
		cfg:      cfg,
		log:      logger.With("component", "pipeline"),
	}, nil
}

// ScanReport is the result of scanning one manifest.
type ScanReport struct {
	Filename        string                `json:"filename"`
	Ecosystem       types.Ecosystem       `json:"ecosystem"`
	PackageCount    int                   `json:"packageCount"`
	StoryCards      []types.StoryCard     `json:"storyCards"`
	Vulnerabilities []types.Vulnerability `json:"vulnerabilities"`
	CleanCount      int                   `json:"cleanCount"`
	ParseErrors     []string              `json:"parseErrors"`
}

// Scan parses a manifest, looks every package up, and writes active story
// cards followed by historical ones for the clean packages.
func (s *Service) Scan(ctx context.Context, content []byte, filename string) (ScanReport, error) {
	s.log.InfoContext(ctx, "scan_started", "filename", filename, "size_bytes", len(content))

	parsed, err := manifest.Parse(content, filename, s.cfg.MaxUploadBytes)
	if err != nil {
		return ScanReport{}, err
	}
	s.log.InfoContext(ctx, "packages_parsed",
		"filename", filename, "count", len(parsed.Packages), "ecosystem", parsed.Ecosystem, "errors", len(parsed.ParseErrors))

	result := s.scanner.Scan(ctx, parsed.Packages)
	active := s.stories.Active(ctx, result.Vulnerabilities, s.cfg.MaxActive)
	clean := story.CleanPackages(parsed.Packages, result.Vulnerabilities)
	historical := s.stories.Historical(ctx, clean, s.cfg.MaxHistorical)

	cards := make([]types.StoryCard, 0, len(active)+len(historical))
	cards = append(cards, active...)
	cards = append(cards, historical...)

	s.log.InfoContext(ctx, "scan_complete",
		"filename", filename,
		"packages", result.PackageCount,
		"vulnerabilities", len(result.Vulnerabilities),
		"active_stories", len(active),
		"historical_stories", len(historical),
		"clean", result.CleanCount,
	)
	parseErrors := parsed.ParseErrors
	if parseErrors == nil {
		parseErrors = []string{}
	}
	return ScanReport{
		Filename:        parsed.Filename,
		Ecosystem:       parsed.Ecosystem,
		PackageCount:    result.PackageCount,
		StoryCards:      cards,
		Vulnerabilities: result.Vulnerabilities,
		CleanCount:      result.CleanCount,
		ParseErrors:     parseErrors,
	}, nil
}

// GenerateComic plans and renders a comic for card, then indexes it.
func (s *Service) GenerateComic(ctx context.Context, card types.StoryCard) (types.Comic, error) {
	if err := llm.Validate(card); err != nil {
		return types.Comic{}, apperr.Wrap(err, apperr.CodeInvalidRequest, "invalid story card: %v", err)
	}
	s.log.InfoContext(ctx, "comic_request_received", "story_id", card.ID, "title", card.Title)

	sb, err := s.planner.Plan(ctx, card)
	if err != nil {
		return types.Comic{}, generationError(err, "storyboard generation failed")
	}
	c, err := s.renderer.Render(ctx, sb)
	if err != nil {
		var pe *comic.PageError
		if errors.As(err, &pe) {
			return types.Comic{}, generationError(err, fmt.Sprintf("failed to generate page %d", pe.Page))
		}
		return types.Comic{}, generationError(err, "comic generation failed")
	}
	if err := s.index.Put(ctx, c); err != nil {
		return types.Comic{}, apperr.Wrap(err, apperr.CodeInternal, "store comic %s", c.Hash)
	}
	s.log.InfoContext(ctx, "comic_created", "comic_hash", c.Hash, "title", c.Title, "pages", c.PageCount)
	return c, nil
}

func generationError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(err, apperr.CodeGenerationFailed, "%s: %v", msg, err)
	}
	if llm.IsUpstream(err) {
		return apperr.Wrap(err, apperr.CodeExternalAPI, "Gemini API error: %s", msg)
	}
	return apperr.GenerationFailed(err, "%s", msg)
}

// LookupComic returns the share view of a stored comic.
func (s *Service) LookupComic(ctx context.Context, hash string) (types.ComicMetadata, error) {
	if strings.TrimSpace(hash) == "" {
		return types.ComicMetadata{}, apperr.ComicNotFound(hash)
	}
	c, err := s.index.Get(ctx, hash)
	if errors.Is(err, comicindex.ErrNotFound) {
		s.log.WarnContext(ctx, "comic_not_found", "comic_hash", hash)
		return types.ComicMetadata{}, apperr.ComicNotFound(hash)
	}
	if err != nil {
		return types.ComicMetadata{}, apperr.Wrap(err, apperr.CodeInternal, "load comic %s", hash)
	}
	return Metadata(c), nil
}

// Metadata builds the share view of c.
func Metadata(c types.Comic) types.ComicMetadata {
	thumb := ""
	if len(c.Pages) > 0 {
		thumb = c.Pages[0].ImageURL
	}
	return types.ComicMetadata{
		Hash:         c.Hash,
		Title:        c.Title,
		Description:  fmt.Sprintf("A %s security comic about %s", strings.ToLower(string(c.Archetype)), c.Title),
		PageCount:    c.PageCount,
		Pages:        c.Pages,
		ThumbnailURL: thumb,
		GeneratedAt:  c.GeneratedAt,
	}
}
