package llm

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// Phases understood by FakeClient.
const (
	PhaseStoryCard  = "story_card"
	PhaseHistorical = "historical"
	PhaseStoryboard = "storyboard"
	PhaseComicPage  = "comic_page"
)

// FakeClient returns deterministic, minimal JSON payloads per phase for offline/testing.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	subject := fakeSubject(req.Prompt)
	var obj any
	switch PhaseFrom(ctx) {
	case PhaseStoryCard:
		obj = map[string]any{
			"title":          "The " + subject + " Incident",
			"whatHappened":   []string{"A flaw was found in " + subject, "It was disclosed publicly", "A fix was released"},
			"whyShouldICare": []string{"Your build pulls in " + subject, "Attackers read advisories too"},
			"whatShouldIDo":  []string{"Upgrade " + subject, "Pin versions in your lockfile"},
		}
	case PhaseHistorical:
		obj = map[string]any{
			"hasIncident":    true,
			"packageName":    subject,
			"title":          "The " + subject + " Story",
			"severity":       "MEDIUM",
			"whatHappened":   []string{subject + " once made headlines"},
			"whyShouldICare": []string{"Popular packages are popular targets"},
			"whatShouldIDo":  []string{"Review maintainers of critical dependencies"},
			"sources":        []string{},
		}
	case PhaseStoryboard:
		obj = map[string]any{
			"title":          "The " + subject + " Files",
			"archetype":      "OOPS",
			"artStyle":       "MINIMAL_XKCD",
			"styleModifiers": "",
			"visualAnchors": map[string]any{
				"colorPalette": []string{"#222222", "#f5f5f5", "#e63946"},
				"characters":   []any{map[string]any{"name": "Dev", "appearance": "stick figure with a hoodie", "recurringProps": []string{"laptop"}}},
				"keyEntities":  []string{"a package crate labelled " + subject},
				"atmosphere":   "wry",
				"lineStyle":    "thin clean lines",
			},
			"pages": []any{
				map[string]any{"pageNumber": 1, "layout": "two tiers", "panels": []any{
					map[string]any{"panelNumber": 1, "sceneDescription": "Title card reading " + strings.ToUpper(subject), "caption": "A Security Story"},
					map[string]any{"panelNumber": 2, "sceneDescription": "Dev installs the package"},
				}},
				map[string]any{"pageNumber": 2, "layout": "single tier", "panels": []any{
					map[string]any{"panelNumber": 1, "sceneDescription": "Dev upgrades and relaxes", "caption": "Keep dependencies patched"},
				}},
			},
		}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func (f *FakeClient) StartImageSession(context.Context) (ImageSession, error) {
	return &fakeImageSession{}, nil
}

type fakeImageSession struct{ turn int }

// Send returns a stand-in payload unique per turn and prompt.
func (s *fakeImageSession) Send(_ context.Context, prompt string) (Image, error) {
	s.turn++
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", s.turn, prompt)))
	data := append([]byte("\x89PNG\r\n\x1a\n"), sum[:]...)
	return Image{Data: data, MIMEType: "image/png"}, nil
}

// fakeSubject pulls the package name out of a prompt's "Package: x" line.
func fakeSubject(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"Package:", "PACKAGE:"} {
			if v, ok := strings.CutPrefix(line, prefix); ok {
				v = strings.TrimSpace(v)
				if at := strings.LastIndex(v, "@"); at > 0 {
					v = v[:at]
				}
				if v != "" {
					return v
				}
			}
		}
	}
	return "package"
}
