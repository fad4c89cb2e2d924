package types

import "strings"

// Severity is the ordinal scale every finding is normalized into.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Rank returns the position of s in CRITICAL > HIGH > MEDIUM > LOW > INFO.
// Unknown values rank with INFO.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string { return string(s) }

// ParseSeverity maps a vendor severity label onto the scale, case-insensitively.
// "MODERATE" aliases MEDIUM; anything unrecognized becomes INFO.
func ParseSeverity(label string) Severity {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM", "MODERATE":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	default:
		return SeverityInfo
	}
}
