package osv

import "encoding/json"

// Request and response shapes of POST /v1/query.

type queryRequest struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version,omitempty"`
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryResponse struct {
	Vulns []rawVuln `json:"vulns"`
}

type rawVuln struct {
	ID               string             `json:"id"`
	Summary          string             `json:"summary"`
	Details          string             `json:"details"`
	Severity         []rawSeverity      `json:"severity"`
	DatabaseSpecific rawDatabaseSpecific `json:"database_specific"`
	Affected         []rawAffected      `json:"affected"`
	References       []rawReference     `json:"references"`
}

type rawSeverity struct {
	Type  string          `json:"type"`
	Score json.RawMessage `json:"score"`
}

type rawDatabaseSpecific struct {
	Severity string `json:"severity"`
}

type rawAffected struct {
	Package  queryPackage `json:"package"`
	Ranges   []rawRange   `json:"ranges"`
	Versions []string     `json:"versions"`
}

type rawRange struct {
	Type   string     `json:"type"`
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	Introduced string `json:"introduced,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
}

type rawReference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
