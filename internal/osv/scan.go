package osv

import (
	"context"
	"log/slog"

	"vulncomics/internal/common/fanout"
	"vulncomics/internal/types"
)

// Querier looks up one package. *Client satisfies it.
type Querier interface {
	Query(ctx context.Context, pkg types.Package) []types.Vulnerability
}

// Scanner fans lookups out over a package list.
type Scanner struct {
	q     Querier
	limit int
	log   *slog.Logger
}

// NewScanner builds a Scanner. limit bounds in-flight lookups; <= 0 is unbounded.
func NewScanner(q Querier, limit int, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{q: q, limit: limit, log: logger.With("component", "scan")}
}

// Scan looks up every package concurrently and waits for all of them.
// A package counts as vulnerable once, however many findings it has.
func (s *Scanner) Scan(ctx context.Context, pkgs []types.Package) types.ScanResult {
	s.log.InfoContext(ctx, "osv_scan_started", "package_count", len(pkgs))

	found := fanout.Map(ctx, pkgs, s.limit,
		func(ctx context.Context, p types.Package) ([]types.Vulnerability, error) {
			return s.q.Query(ctx, p), nil
		},
		func(types.Package, error) []types.Vulnerability { return nil },
	)

	all := make([]types.Vulnerability, 0)
	vulnerable := make(map[string]struct{})
	for i, p := range pkgs {
		if len(found[i]) == 0 {
			continue
		}
		all = append(all, found[i]...)
		vulnerable[p.Name+"@"+p.Version] = struct{}{}
	}
	res := types.ScanResult{
		PackageCount:    len(pkgs),
		Vulnerabilities: all,
		CleanCount:      len(pkgs) - len(vulnerable),
	}
	s.log.InfoContext(ctx, "osv_scan_complete",
		"total_packages", res.PackageCount,
		"vulnerable_packages", len(vulnerable),
		"total_vulnerabilities", len(all),
		"clean_packages", res.CleanCount,
	)
	return res
}
