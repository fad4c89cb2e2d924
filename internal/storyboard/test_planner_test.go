package storyboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulncomics/internal/llm"
	"vulncomics/internal/types"
)

type stubClient struct {
	raw  json.RawMessage
	err  error
	req  llm.StructuredRequest
	phase string
}

func (s *stubClient) Name() string { return "stub" }
func (s *stubClient) Close() error { return nil }
func (s *stubClient) GenerateJSON(ctx context.Context, req llm.StructuredRequest) (json.RawMessage, error) {
	s.req = req
	s.phase = llm.PhaseFrom(ctx)
	return s.raw, s.err
}
func (s *stubClient) StartImageSession(context.Context) (llm.ImageSession, error) {
	return nil, errors.New("unused")
}

var card = types.StoryCard{
	ID:             "story_abc",
	Title:          "The Left-Pad Incident",
	PackageName:    "left-pad",
	PackageVersion: "1.3.0",
	StoryType:      types.StoryHistoricalYours,
	Severity:       types.SeverityMedium,
	WhatHappened:   []string{"An 11-line package was unpublished"},
	WhyShouldICare: []string{"Builds broke everywhere"},
	WhatShouldIDo:  []string{"Vendor or lock critical dependencies"},
	IncidentDate:   "2016-03",
}

func plan(pages ...map[string]any) json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"title":          "Eleven Lines",
		"archetype":      "OOPS",
		"artStyle":       "MINIMAL_XKCD",
		"styleModifiers": "muted",
		"visualAnchors": map[string]any{
			"colorPalette": []string{"#000000", "#ffffff"},
			"characters":   []any{map[string]any{"name": "Azer", "appearance": "tall, beard", "recurringProps": []string{"laptop"}}},
			"keyEntities":  []string{"a Jenga tower of packages"},
			"atmosphere":   "absurd",
			"lineStyle":    "thin",
		},
		"pages": pages,
	})
	return b
}

func page(n int, panels int) map[string]any {
	ps := make([]any, 0, panels)
	for i := 1; i <= panels; i++ {
		ps = append(ps, map[string]any{"panelNumber": i, "sceneDescription": "scene"})
	}
	return map[string]any{"pageNumber": n, "layout": "grid", "panels": ps}
}

func TestPlanDecodesAndNormalizes(t *testing.T) {
	cli := &stubClient{raw: plan(page(3, 2), page(1, 3), page(2, 1))}
	sb, err := NewPlanner(cli, nil).Plan(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, "Eleven Lines", sb.Title)
	assert.Equal(t, types.ArchetypeOops, sb.Archetype)
	assert.Equal(t, types.ArtStyleMinimalXKCD, sb.ArtStyle)
	require.Len(t, sb.Pages, 3)
	for i, p := range sb.Pages {
		assert.Equal(t, i+1, p.PageNumber)
	}
	assert.Len(t, sb.Pages[0].Panels, 3)
	assert.Equal(t, 6, sb.TotalPanels())

	assert.Equal(t, llm.PhaseStoryboard, cli.phase)
	assert.Contains(t, cli.req.Prompt, `"LEFT-PAD"`)
	assert.Contains(t, cli.req.Prompt, "PACKAGE: left-pad@1.3.0")
	assert.Contains(t, cli.req.Prompt, "INCIDENT DATE: 2016-03")
	assert.NotEmpty(t, cli.req.System)
	assert.NotNil(t, cli.req.Schema)
}

func TestPlanFailsWithoutFallback(t *testing.T) {
	cases := map[string]*stubClient{
		"oracle error":     {err: errors.New("503")},
		"not json":         {raw: json.RawMessage("nope")},
		"no pages":         {raw: plan()},
		"unknown style":    {raw: json.RawMessage(`{"title":"t","archetype":"OOPS","artStyle":"WATERCOLOR","visualAnchors":{"colorPalette":["#fff"]},"pages":[{"pageNumber":1,"panels":[{"panelNumber":1,"sceneDescription":"s"}]}]}`)},
		"unknown archetype": {raw: json.RawMessage(`{"title":"t","archetype":"ROMCOM","artStyle":"CYBERPUNK","visualAnchors":{"colorPalette":["#fff"]},"pages":[{"pageNumber":1,"panels":[{"panelNumber":1,"sceneDescription":"s"}]}]}`)},
		"empty page":       {raw: plan(page(1, 0))},
	}
	for name, cli := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPlanner(cli, nil).Plan(context.Background(), card)
			assert.Error(t, err)
		})
	}
}

func TestPlanWithFakeClient(t *testing.T) {
	sb, err := NewPlanner(llm.NewFakeClient(), nil).Plan(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, "The left-pad Files", sb.Title)
	assert.NotEmpty(t, sb.Pages)
}
