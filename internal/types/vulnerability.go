package types

// MaxReferences bounds how many reference URLs a Vulnerability carries.
const MaxReferences = 5

// Vulnerability is one normalized finding for a queried package.
type Vulnerability struct {
	ID               string   `json:"vulnId"`
	PackageName      string   `json:"packageName"`
	PackageVersion   string   `json:"packageVersion"`
	AffectedVersions string   `json:"affectedVersions"`
	Severity         Severity `json:"severity"`
	Summary          string   `json:"summary"`
	Details          string   `json:"details,omitempty"`
	References       []string `json:"references"`
}

// ScanResult aggregates lookups over every package of a manifest.
// CleanCount counts packages, not findings.
type ScanResult struct {
	PackageCount    int             `json:"packageCount"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	CleanCount      int             `json:"cleanCount"`
}
