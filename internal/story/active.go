// Package story ranks findings and turns them into narrative story cards.
package story

import (
	"context"
	"fmt"
	"log/slog"

	"vulncomics/internal/common/fanout"
	"vulncomics/internal/llm"
	"vulncomics/internal/types"
)

// Generator builds story cards with a generative model.
type Generator struct {
	llm llm.Client
	log *slog.Logger
}

func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: client, log: logger.With("component", "story")}
}

// Active ranks vulns and writes one card per kept finding, concurrently.
// A failed or malformed generation degrades to Fallback; findings are never
// dropped.
func (g *Generator) Active(ctx context.Context, vulns []types.Vulnerability, max int) []types.StoryCard {
	if len(vulns) == 0 {
		g.log.InfoContext(ctx, "no_vulnerabilities_for_stories")
		return []types.StoryCard{}
	}
	top := Rank(vulns, max)
	g.log.InfoContext(ctx, "quick_research_started",
		"total_vulns", len(vulns), "unique_packages", len(Dedupe(vulns)), "generating", len(top))

	results := fanout.Settle(ctx, top, 0, g.research)

	cards := make([]types.StoryCard, len(top))
	enriched := 0
	for i, r := range results {
		if r.Err != nil {
			g.log.WarnContext(ctx, "quick_research_failed",
				"vuln_id", top[i].ID, "package", top[i].PackageName, "error", r.Err)
			cards[i] = Fallback(top[i])
			continue
		}
		enriched++
		cards[i] = r.Value
	}
	g.log.InfoContext(ctx, "quick_research_complete", "stories_generated", len(cards), "with_llm_content", enriched)
	return cards
}

func (g *Generator) research(ctx context.Context, v types.Vulnerability) (types.StoryCard, error) {
	if g.llm == nil {
		return types.StoryCard{}, fmt.Errorf("story: no generative client configured")
	}
	raw, err := g.llm.GenerateJSON(llm.WithPhase(ctx, llm.PhaseStoryCard), llm.StructuredRequest{
		System: activeSystemPrompt,
		Prompt: activePrompt(v),
		Schema: cardContentSchema,
	})
	if err != nil {
		return types.StoryCard{}, err
	}
	var c cardContent
	if err := llm.DecodeValidated(raw, &c); err != nil {
		return types.StoryCard{}, err
	}
	return types.StoryCard{
		ID:             ActiveID(v),
		Title:          c.Title,
		PackageName:    v.PackageName,
		PackageVersion: v.PackageVersion,
		StoryType:      types.StoryActive,
		Severity:       v.Severity,
		WhatHappened:   c.WhatHappened,
		WhyShouldICare: c.WhyShouldICare,
		WhatShouldIDo:  c.WhatShouldIDo,
		IncidentDate:   c.IncidentDate,
		Sources:        firstN(v.References, 3),
	}, nil
}

// Fallback builds a card from the finding alone.
func Fallback(v types.Vulnerability) types.StoryCard {
	summary := v.Summary
	if summary == "" {
		summary = "No summary available"
	}
	return types.StoryCard{
		ID:             ActiveID(v),
		Title:          "Security Issue in " + v.PackageName,
		PackageName:    v.PackageName,
		PackageVersion: v.PackageVersion,
		StoryType:      types.StoryActive,
		Severity:       v.Severity,
		WhatHappened:   []string{summary},
		WhyShouldICare: []string{fmt.Sprintf("Your version (%s) is affected", v.PackageVersion)},
		WhatShouldIDo:  []string{fmt.Sprintf("Update %s to a patched version", v.PackageName)},
		Sources:        firstN(v.References, 3),
	}
}

func firstN(in []string, n int) []string {
	if len(in) > n {
		in = in[:n]
	}
	return append([]string{}, in...)
}
