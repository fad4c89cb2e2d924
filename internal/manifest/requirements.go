package manifest

import (
	"fmt"
	"strings"

	"vulncomics/internal/types"
)

type requirementsTxtParser struct{}

func (requirementsTxtParser) Ecosystem() types.Ecosystem { return types.EcosystemPyPI }

// specifier operators in match order; longer operators first.
var specifiers = []string{"===", "==", "~=", ">=", "<=", "!=", ">", "<"}

// Parse reads one requirement per line. Only pinned or lower-bounded
// requirements yield a version; everything else is reported and skipped.
func (requirementsTxtParser) Parse(content, filename string) (types.ParsedDependencies, error) {
	out := types.ParsedDependencies{
		Filename:    filename,
		Ecosystem:   types.EcosystemPyPI,
		Packages:    []types.Package{},
		ParseErrors: []string{},
	}
	for n, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		name, version, ok := splitRequirement(line)
		if !ok {
			out.ParseErrors = append(out.ParseErrors, fmt.Sprintf("line %d: skipping '%s': no pinned version", n+1, line))
			continue
		}
		out.Packages = append(out.Packages, types.Package{Name: name, Version: version, Ecosystem: types.EcosystemPyPI})
	}
	return out, nil
}

// splitRequirement extracts name and version from "name[extra]==1.2, <2".
// Upper bounds and exclusions alone do not give a usable version.
func splitRequirement(line string) (string, string, bool) {
	idx, op := -1, ""
	for _, s := range specifiers {
		if i := strings.Index(line, s); i > 0 && (idx < 0 || i < idx) {
			idx, op = i, s
		}
	}
	if idx < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:idx])
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	rest := line[idx+len(op):]
	if i := strings.IndexByte(rest, ','); i >= 0 {
		rest = rest[:i]
	}
	version := strings.TrimSpace(rest)
	switch op {
	case "==", "===", "~=", ">=":
	default:
		return "", "", false
	}
	if name == "" || version == "" || strings.Contains(version, "*") {
		return "", "", false
	}
	return name, version, true
}
