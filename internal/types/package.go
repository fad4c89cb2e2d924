package types

import "strings"

// Ecosystem is the closed set of package registries a manifest can declare.
type Ecosystem string

const (
	EcosystemNPM  Ecosystem = "npm"
	EcosystemPyPI Ecosystem = "pypi"
)

// Valid reports whether e is one of the supported ecosystems.
func (e Ecosystem) Valid() bool {
	switch e {
	case EcosystemNPM, EcosystemPyPI:
		return true
	}
	return false
}

// Package is a single name/version pair declared by a manifest.
type Package struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Ecosystem Ecosystem `json:"ecosystem"`
}

// Key identifies a package for merge purposes: ecosystem plus lower-cased name.
func (p Package) Key() string {
	return string(p.Ecosystem) + ":" + strings.ToLower(strings.TrimSpace(p.Name))
}

// ParsedDependencies is the manifest parser's output.
type ParsedDependencies struct {
	Filename    string    `json:"filename"`
	Ecosystem   Ecosystem `json:"ecosystem"`
	Packages    []Package `json:"packages"`
	ParseErrors []string  `json:"parseErrors"`
}
