// Package osv queries the OSV vulnerability database and aggregates scans.
package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vulncomics/internal/types"
)

const (
	DefaultURL     = "https://api.osv.dev/v1/query"
	DefaultTimeout = 30 * time.Second
)

// ecosystemNames maps internal ecosystem tags to OSV's vocabulary.
var ecosystemNames = map[types.Ecosystem]string{
	types.EcosystemNPM:  "npm",
	types.EcosystemPyPI: "PyPI",
}

// OSVEcosystem returns the OSV name for e, or e unchanged when unmapped.
func OSVEcosystem(e types.Ecosystem) string {
	if name, ok := ecosystemNames[e]; ok {
		return name
	}
	return string(e)
}

type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

type Option func(*Client)

func WithURL(u string) Option {
	return func(c *Client) {
		if strings.TrimSpace(u) != "" {
			c.url = strings.TrimSpace(u)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		url:     DefaultURL,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "osv")
	return c
}

// Query returns the normalized findings for pkg. Any transport failure,
// timeout or non-2xx status degrades to an empty result.
func (c *Client) Query(ctx context.Context, pkg types.Package) []types.Vulnerability {
	raw, err := c.query(ctx, pkg)
	if err != nil {
		c.logFailure(ctx, pkg, err)
		return nil
	}
	out := make([]types.Vulnerability, 0, len(raw))
	for _, v := range raw {
		out = append(out, normalize(v, pkg))
	}
	return out
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("osv: unexpected status %d", e.code) }

func (c *Client) query(ctx context.Context, pkg types.Package) ([]rawVuln, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{
		Package: queryPackage{Name: pkg.Name, Ecosystem: OSVEcosystem(pkg.Ecosystem)},
		Version: pkg.Version,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}
	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("osv: decode response: %w", err)
	}
	return out.Vulns, nil
}

func (c *Client) logFailure(ctx context.Context, pkg types.Package, err error) {
	var se *statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.log.WarnContext(ctx, "osv_timeout", "package", pkg.Name, "version", pkg.Version)
	case errors.As(err, &se):
		c.log.WarnContext(ctx, "osv_http_error", "package", pkg.Name, "status", se.code)
	default:
		c.log.WarnContext(ctx, "osv_error", "package", pkg.Name, "error", err)
	}
}

func normalize(v rawVuln, pkg types.Package) types.Vulnerability {
	id := v.ID
	if id == "" {
		id = "UNKNOWN"
	}
	summary := v.Summary
	if summary == "" {
		summary = "No summary available"
	}
	refs := make([]string, 0, types.MaxReferences)
	for _, r := range v.References {
		if r.URL == "" {
			continue
		}
		refs = append(refs, r.URL)
		if len(refs) == types.MaxReferences {
			break
		}
	}
	return types.Vulnerability{
		ID:               id,
		PackageName:      pkg.Name,
		PackageVersion:   pkg.Version,
		AffectedVersions: AffectedRange(v.Affected, pkg.Name),
		Severity:         resolveSeverity(v),
		Summary:          summary,
		Details:          v.Details,
		References:       refs,
	}
}
