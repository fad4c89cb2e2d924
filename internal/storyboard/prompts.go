package storyboard

import (
	"fmt"
	"strings"

	"vulncomics/internal/types"
)

const systemPrompt = `You are a comic book writer and visual storyteller.
You write comics that teach while they entertain, with good pacing and concrete imagery
that makes technical ideas easy to grasp.

PAGE 1 IS THE TITLE PAGE. Within two seconds a reader must know:
1. the PACKAGE NAME, displayed prominently
2. a title hinting at what happened
3. a subtitle saying this is a security story
4. the date or year of the incident, when known
Panel 1 of page 1 is a title card with the package name and title as visible text.

RULES:
1. Concrete visual descriptions only, never abstract concepts.
2. Characters are distinctive and stay consistent.
3. One clear scene per panel.
4. Captions under 15 words.
5. End on a clear educational takeaway.

ARCHETYPES:
- HEIST (4-6 pages): targeted attacks with clear attacker intent
- OOPS (3-4 pages): accidents and unintended consequences
- SAGA (6-10 pages): incidents that unfolded in several waves
- LURKER (3-5 pages): vulnerabilities that hid for a long time

ART STYLES:
- EPIC_SCIFI: grand, cosmic, Moebius-like; large-scale attacks
- NOIR_THRILLER: dark corporate espionage; targeted attacks
- RETRO_COMIC: classic superhero look; dramatic discoveries
- MINIMAL_XKCD: stick figures and wit; absurd or ironic incidents
- CYBERPUNK: neon and glitches; crypto and DeFi exploits
- PROPAGANDA_POSTER: bold protest art; intentional sabotage

VISUAL ANCHORS:
- colorPalette: 3-5 colors with hex codes
- characters: every recurring character, described in detail
- keyEntities: visual forms for the important concepts
- atmosphere: the overall mood
- lineStyle: drawing style notes`

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("• ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}

func userPrompt(card types.StoryCard) string {
	pkg := strings.ToUpper(card.PackageName)
	date := card.IncidentDate
	if date == "" {
		date = "Unknown"
	}
	var b strings.Builder
	b.WriteString("Create a comic storyboard for this security incident:\n\n")
	fmt.Fprintf(&b, "TITLE: %s\n", card.Title)
	fmt.Fprintf(&b, "PACKAGE: %s@%s\n", card.PackageName, card.PackageVersion)
	fmt.Fprintf(&b, "SEVERITY: %s\n", card.Severity)
	fmt.Fprintf(&b, "STORY TYPE: %s\n\n", card.StoryType)
	fmt.Fprintf(&b, "WHAT HAPPENED:\n%s\n", bulletList(card.WhatHappened))
	fmt.Fprintf(&b, "WHY IT MATTERS:\n%s\n", bulletList(card.WhyShouldICare))
	fmt.Fprintf(&b, "WHAT TO DO:\n%s\n", bulletList(card.WhatShouldIDo))
	if card.IncidentDate != "" {
		fmt.Fprintf(&b, "INCIDENT DATE: %s\n", card.IncidentDate)
	}
	fmt.Fprintf(&b, `
---

PAGE 1, PANEL 1 MUST be a title card showing:
- the package name "%s" in large text
- a dramatic title for this story
- a subtitle such as "A Security Vulnerability Story"
- the year or date: %s

Pick the archetype from the incident type: an active attack or compromise is HEIST or SAGA,
an accident or maintainer action is OOPS, a long-hidden flaw is LURKER.
Pick an art style that matches the tone.

Fill visualAnchors for consistency, then write the pages:
- page 1: the title card, then a brief setup of the threat
- later pages: 2-4 panels each (fewer, larger panels are better), concrete scenes,
  captions and dialogue as needed, and a layout for each page
- the last page ends with clear, actionable advice
`, pkg, date)
	return b.String()
}
