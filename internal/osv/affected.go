package osv

import (
	"fmt"
	"strings"
)

// AffectedRange renders the affected versions of packageName as a short
// human string, using the first matching affected entry that yields one.
func AffectedRange(affected []rawAffected, packageName string) string {
	for _, a := range affected {
		if !strings.EqualFold(a.Package.Name, packageName) {
			continue
		}
		for _, r := range a.Ranges {
			var introduced, fixed string
			for _, ev := range r.Events {
				if ev.Introduced != "" {
					introduced = ev.Introduced
				}
				if ev.Fixed != "" {
					fixed = ev.Fixed
				}
			}
			switch {
			case fixed != "" && introduced != "" && introduced != "0":
				return fmt.Sprintf(">=%s, <%s", introduced, fixed)
			case fixed != "":
				return "<" + fixed
			case introduced != "":
				return ">=" + introduced
			}
		}
		switch n := len(a.Versions); {
		case n == 0:
		case n <= 3:
			return strings.Join(a.Versions, ", ")
		default:
			return fmt.Sprintf("%s and %d more", a.Versions[0], n-1)
		}
	}
	return "unknown"
}
