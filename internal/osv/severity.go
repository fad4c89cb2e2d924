package osv

import (
	"encoding/json"
	"strconv"
	"strings"

	"vulncomics/internal/types"
)

// NormalizeScore maps a CVSS base score onto the severity scale.
func NormalizeScore(score float64) types.Severity {
	switch {
	case score >= 9.0:
		return types.SeverityCritical
	case score >= 7.0:
		return types.SeverityHigh
	case score >= 4.0:
		return types.SeverityMedium
	case score >= 0.1:
		return types.SeverityLow
	default:
		return types.SeverityInfo
	}
}

// ParseSeverity maps a vendor label such as "MODERATE" onto the scale.
func ParseSeverity(label string) types.Severity {
	return types.ParseSeverity(label)
}

// resolveSeverity prefers the first numeric score, then the database-specific
// label, then INFO. Vector strings ("CVSS:3.1/AV:N/...") carry no score and
// are skipped.
func resolveSeverity(v rawVuln) types.Severity {
	for _, s := range v.Severity {
		if score, ok := numericScore(s.Score); ok {
			return NormalizeScore(score)
		}
	}
	if label := strings.TrimSpace(v.DatabaseSpecific.Severity); label != "" {
		return ParseSeverity(label)
	}
	return types.SeverityInfo
}

func numericScore(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
