package story

import (
	"sort"

	"vulncomics/internal/types"
)

const (
	DefaultMaxActive     = 3
	DefaultMaxHistorical = 2
)

// Dedupe keeps one finding per package name, the most severe one. The first
// finding seen wins ties. Groups keep the position of their first member.
// Names are compared as given, so "Lodash" and "lodash" stay separate.
func Dedupe(vulns []types.Vulnerability) []types.Vulnerability {
	index := make(map[string]int, len(vulns))
	out := make([]types.Vulnerability, 0, len(vulns))
	for _, v := range vulns {
		i, seen := index[v.PackageName]
		if !seen {
			index[v.PackageName] = len(out)
			out = append(out, v)
			continue
		}
		if v.Severity.Rank() > out[i].Severity.Rank() {
			out[i] = v
		}
	}
	return out
}

// Rank dedupes, orders by severity (stable) and keeps the top max.
// max <= 0 uses DefaultMaxActive.
func Rank(vulns []types.Vulnerability, max int) []types.Vulnerability {
	if max <= 0 {
		max = DefaultMaxActive
	}
	out := Dedupe(vulns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}
