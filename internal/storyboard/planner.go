// Package storyboard plans a multi-page comic from one story card.
package storyboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"vulncomics/internal/llm"
	"vulncomics/internal/types"
)

type Planner struct {
	llm llm.Client
	log *slog.Logger
}

func NewPlanner(client llm.Client, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{llm: client, log: logger.With("component", "storyboard")}
}

// Plan asks the model for a storyboard. There is no fallback: any model or
// validation error fails the plan.
func (p *Planner) Plan(ctx context.Context, card types.StoryCard) (types.Storyboard, error) {
	p.log.InfoContext(ctx, "storyboard_generation_started", "story_id", card.ID, "title", card.Title)

	sb, err := p.plan(ctx, card)
	if err != nil {
		p.log.ErrorContext(ctx, "storyboard_generation_failed", "story_id", card.ID, "error", err)
		return types.Storyboard{}, fmt.Errorf("storyboard: %w", err)
	}
	p.log.InfoContext(ctx, "storyboard_generated",
		"story_id", card.ID,
		"title", sb.Title,
		"archetype", sb.Archetype,
		"art_style", sb.ArtStyle,
		"pages", len(sb.Pages),
		"total_panels", sb.TotalPanels(),
	)
	return sb, nil
}

func (p *Planner) plan(ctx context.Context, card types.StoryCard) (types.Storyboard, error) {
	if p.llm == nil {
		return types.Storyboard{}, fmt.Errorf("no generative client configured")
	}
	raw, err := p.llm.GenerateJSON(llm.WithPhase(ctx, llm.PhaseStoryboard), llm.StructuredRequest{
		System: systemPrompt,
		Prompt: userPrompt(card),
		Schema: storyboardSchema,
	})
	if err != nil {
		return types.Storyboard{}, err
	}
	var sb types.Storyboard
	if err := llm.DecodeValidated(raw, &sb); err != nil {
		return types.Storyboard{}, err
	}
	normalizePages(&sb)
	return sb, nil
}

// normalizePages orders pages by their declared number and renumbers them
// 1..N so rendering order and page numbers always agree.
func normalizePages(sb *types.Storyboard) {
	sort.SliceStable(sb.Pages, func(i, j int) bool {
		return sb.Pages[i].PageNumber < sb.Pages[j].PageNumber
	})
	for i := range sb.Pages {
		sb.Pages[i].PageNumber = i + 1
	}
}
