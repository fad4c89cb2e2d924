package story

import (
	"context"
	"fmt"
	"strings"

	"vulncomics/internal/common/fanout"
	"vulncomics/internal/llm"
	"vulncomics/internal/types"
)

// NotablePackages have well-known public incidents and are researched first.
var NotablePackages = map[string]struct{}{
	"left-pad": {}, "event-stream": {}, "ua-parser-js": {}, "colors": {}, "faker": {},
	"node-ipc": {}, "peacenotwar": {}, "log4j": {}, "lodash": {}, "moment": {},
	"minimist": {}, "axios": {}, "express": {}, "jquery": {}, "bootstrap": {},
	"angular": {}, "react": {}, "vue": {}, "webpack": {}, "npm": {}, "yarn": {},
}

func IsNotable(name string) bool {
	_, ok := NotablePackages[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// HistoricalCandidates orders clean packages notable-first, keeping input
// order inside each group, and keeps max+2 of them.
func HistoricalCandidates(clean []types.Package, max int) []types.Package {
	if max <= 0 {
		max = DefaultMaxHistorical
	}
	notable := make([]types.Package, 0, len(clean))
	other := make([]types.Package, 0, len(clean))
	for _, p := range clean {
		if IsNotable(p.Name) {
			notable = append(notable, p)
		} else {
			other = append(other, p)
		}
	}
	out := append(notable, other...)
	if limit := max + 2; len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CleanPackages returns the packages with no finding, matching names
// case-insensitively.
func CleanPackages(pkgs []types.Package, vulns []types.Vulnerability) []types.Package {
	vulnerable := make(map[string]struct{}, len(vulns))
	for _, v := range vulns {
		vulnerable[strings.ToLower(v.PackageName)] = struct{}{}
	}
	out := make([]types.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if _, bad := vulnerable[strings.ToLower(p.Name)]; !bad {
			out = append(out, p)
		}
	}
	return out
}

// Historical researches candidates concurrently and keeps, in candidate
// order, the first max that report an incident. "No incident" and failed
// research are both skipped.
func (g *Generator) Historical(ctx context.Context, clean []types.Package, max int) []types.StoryCard {
	if max <= 0 {
		max = DefaultMaxHistorical
	}
	candidates := HistoricalCandidates(clean, max)
	if len(candidates) == 0 {
		return []types.StoryCard{}
	}
	notable := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if IsNotable(p.Name) {
			notable = append(notable, p.Name)
		}
	}
	g.log.InfoContext(ctx, "historical_research_started", "candidates", len(candidates), "notable", notable)

	results := fanout.Settle(ctx, candidates, 0, g.researchHistory)

	cards := make([]types.StoryCard, 0, max)
	for i, r := range results {
		if r.Err != nil {
			g.log.WarnContext(ctx, "historical_research_failed", "package", candidates[i].Name, "error", r.Err)
			continue
		}
		if !r.Value.usable() {
			continue
		}
		cards = append(cards, historicalCard(candidates[i], r.Value))
		if len(cards) >= max {
			break
		}
	}
	g.log.InfoContext(ctx, "historical_research_complete", "researched", len(candidates), "with_incidents", len(cards))
	return cards
}

func (g *Generator) researchHistory(ctx context.Context, p types.Package) (historicalIncident, error) {
	if g.llm == nil {
		return historicalIncident{}, fmt.Errorf("story: no generative client configured")
	}
	raw, err := g.llm.GenerateJSON(llm.WithPhase(ctx, llm.PhaseHistorical), llm.StructuredRequest{
		System: historicalSystemPrompt,
		Prompt: historicalPrompt(p),
		Schema: historicalIncidentSchema,
	})
	if err != nil {
		return historicalIncident{}, err
	}
	var h historicalIncident
	if err := llm.DecodeValidated(raw, &h); err != nil {
		return historicalIncident{}, err
	}
	return h, nil
}

func historicalCard(p types.Package, h historicalIncident) types.StoryCard {
	return types.StoryCard{
		ID:             HistoricalID(p.Name),
		Title:          h.Title,
		PackageName:    p.Name,
		PackageVersion: p.Version,
		StoryType:      types.StoryHistoricalYours,
		Severity:       types.ParseSeverity(h.Severity),
		WhatHappened:   h.WhatHappened,
		WhyShouldICare: h.WhyShouldICare,
		WhatShouldIDo:  h.WhatShouldIDo,
		IncidentDate:   h.IncidentDate,
		Sources:        firstN(h.Sources, 3),
	}
}
