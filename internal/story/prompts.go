package story

import (
	"fmt"
	"strings"

	"vulncomics/internal/types"
)

const activeSystemPrompt = `You are a security educator who explains vulnerabilities to working developers.
Be clear, factual and educational. Do not be alarmist and avoid jargon where a plain word will do.

For every story card:
- Write a memorable title ("The Lodash Saga", not "CVE-2021-23337").
- Explain what happened in terms a developer can follow.
- Say why it matters to someone who depends on the package.
- Give remediation steps that can be done today.
- Include the approximate incident date when you know it.`

const historicalSystemPrompt = `You are a security historian of open source package ecosystems.
You know the well-documented incidents: the left-pad unpublishing (2016), the event-stream wallet theft (2018),
the ua-parser-js hijack (2021), the colors and faker sabotage (2022), node-ipc protestware (2022) and Log4Shell (2021).

When asked about a package, recall any notable security incident, supply chain attack, maintainer dispute
or other security story, including ones that are long fixed.

Be accurate. If you know of no notable incident, set hasIncident to false.
Never invent an incident you are not confident happened.`

const maxDetails = 1000

func activePrompt(v types.Vulnerability) string {
	var b strings.Builder
	b.WriteString("Generate educational content for this security vulnerability:\n\n")
	fmt.Fprintf(&b, "Package: %s\n", v.PackageName)
	fmt.Fprintf(&b, "Version: %s\n", v.PackageVersion)
	fmt.Fprintf(&b, "Vulnerability ID: %s\n", v.ID)
	fmt.Fprintf(&b, "Severity: %s\n", v.Severity)
	fmt.Fprintf(&b, "Affected versions: %s\n", v.AffectedVersions)
	fmt.Fprintf(&b, "Summary: %s\n", v.Summary)
	if d := v.Details; d != "" {
		if len(d) > maxDetails {
			d = d[:maxDetails] + "..."
		}
		fmt.Fprintf(&b, "Details: %s\n", d)
	}
	b.WriteString(`
Produce:
1. a catchy, memorable title
2. 3-5 bullets on what happened
3. 2-3 bullets on why developers should care
4. 2-3 actionable remediation steps
5. the approximate incident date as YYYY-MM, or null if unknown`)
	return b.String()
}

func historicalPrompt(p types.Package) string {
	return fmt.Sprintf(`Research this %s package for historical security incidents:

Package: %s
Version in the user's project: %s

1. Has this package ever had a notable security incident, supply chain attack or maintainer drama?
2. If so, what happened, when, and what was the impact?
3. What can developers learn from it?

If there is no notable incident, set hasIncident to false and leave the rest empty.
Otherwise provide a catchy title, 3-5 bullets on what happened, 2-3 bullets on why developers
should care, 2-3 lessons learned, the approximate date (YYYY-MM) and a severity by impact:
CRITICAL (widespread damage), HIGH (significant), MEDIUM (moderate), LOW (minor), INFO (educational).`,
		p.Ecosystem, p.Name, p.Version)
}
