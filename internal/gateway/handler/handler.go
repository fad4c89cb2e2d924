// Package handler exposes the pipeline over JSON HTTP and a websocket.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"vulncomics/internal/apperr"
	"vulncomics/internal/pipeline"
	"vulncomics/internal/types"
)

// Pipeline is the set of operations the API serves.
type Pipeline interface {
	Scan(ctx context.Context, content []byte, filename string) (pipeline.ScanReport, error)
	GenerateComic(ctx context.Context, card types.StoryCard) (types.Comic, error)
	LookupComic(ctx context.Context, hash string) (types.ComicMetadata, error)
}

type Options struct {
	Version        string
	MaxUploadBytes int64
	// FilesDir, if set, is served under /files/.
	FilesDir string
	Logger   *slog.Logger
}

type Handler struct {
	svc     Pipeline
	version string
	maxBody int64
	files   string
	log     *slog.Logger
}

func New(svc Pipeline, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxUploadBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handler{
		svc:     svc,
		version: opts.Version,
		maxBody: maxBody,
		files:   strings.TrimSpace(opts.FilesDir),
		log:     logger.With("component", "handler"),
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/scan", h.HandleScan)
	mux.HandleFunc("POST /api/generate-comic", h.HandleGenerateComic)
	mux.HandleFunc("GET /api/generate-comic/ws", h.HandleGenerateComicWS)
	mux.HandleFunc("GET /api/comic/{hash}", h.HandleGetComic)
	if h.files != "" {
		mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(h.files))))
	}
	return mux
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": h.version,
	})
}

// multipart framing allowance on top of the file limit
const formOverhead = 64 << 10

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody+formOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(w, r, apperr.FileTooLarge(h.maxBody))
			return
		}
		h.writeError(w, r, apperr.New(apperr.CodeInvalidRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxBody+1))
	if err != nil {
		h.writeError(w, r, apperr.Wrap(err, apperr.CodeInvalidRequest, "read upload"))
		return
	}
	filename := header.Filename
	if filename == "" {
		filename = "unknown"
	}
	report, err := h.svc.Scan(r.Context(), content, filename)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type generateComicRequest struct {
	StoryCard *types.StoryCard `json:"storyCard"`
}

func (h *Handler) HandleGenerateComic(w http.ResponseWriter, r *http.Request) {
	var in generateComicRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxBody)).Decode(&in); err != nil {
		h.writeError(w, r, apperr.New(apperr.CodeInvalidRequest, "invalid json body"))
		return
	}
	if in.StoryCard == nil {
		h.writeError(w, r, apperr.New(apperr.CodeInvalidRequest, "storyCard is required"))
		return
	}
	c, err := h.svc.GenerateComic(r.Context(), *in.StoryCard)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleGetComic(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimSpace(r.PathValue("hash"))
	meta, err := h.svc.LookupComic(r.Context(), hash)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

type errorBody struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
}

// toErrorBody maps err onto the public taxonomy; unknown errors become
// INTERNAL_ERROR without leaking detail.
func toErrorBody(err error) (int, errorBody) {
	if ae, ok := apperr.As(err); ok {
		return ae.Status(), errorBody{Error: ae.Code, Message: ae.Message}
	}
	return http.StatusInternalServerError, errorBody{Error: apperr.CodeInternal, Message: "internal server error"}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := toErrorBody(err)
	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	h.log.Log(r.Context(), level, "request_failed", "path", r.URL.Path, "code", body.Error, "error", err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
