package comic

import (
	"fmt"
	"strings"

	"vulncomics/internal/types"
)

func panelsText(panels []types.PanelDescription) string {
	parts := make([]string, 0, len(panels))
	for _, p := range panels {
		var b strings.Builder
		fmt.Fprintf(&b, "Panel %d: %s", p.PanelNumber, p.SceneDescription)
		if p.Caption != "" {
			fmt.Fprintf(&b, "\nCaption: %q", p.Caption)
		}
		if p.Dialogue != "" {
			fmt.Fprintf(&b, "\nDialogue: %q", p.Dialogue)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}

func charactersText(chars []types.CharacterDesign) string {
	lines := make([]string, 0, len(chars))
	for _, c := range chars {
		line := fmt.Sprintf("- %s: %s", c.Name, c.Appearance)
		if len(c.RecurringProps) > 0 {
			line += fmt.Sprintf(" (props: %s)", strings.Join(c.RecurringProps, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// titlePagePrompt opens the session: it carries the full visual anchor set
// and the title-page directive.
func titlePagePrompt(sb types.Storyboard) string {
	a := sb.VisualAnchors
	page := sb.Pages[0]
	total := len(sb.Pages)
	return fmt.Sprintf(`You are creating a %d-page comic called %q.

STYLE: %s
%s

COLOR PALETTE: %s

CHARACTERS (keep these designs on every page):
%s

KEY VISUAL ELEMENTS: %s

ATMOSPHERE: %s
LINE STYLE: %s

---

Generate PAGE 1 of %d. THIS IS THE TITLE PAGE.

This page must make clear what the comic is about.
The title %q MUST appear as large, legible text.
Add a subtitle such as "A Security Vulnerability Story" for context.

Layout: %s

%s

Requirements:
- a single comic page image with %d panels
- clear panel borders
- a LARGE, PROMINENT, easy to read title
- professional comic lettering for all text
- 16:9 aspect ratio
- the reader immediately understands this is a security story
- establish the visual style used by every later page`,
		total, sb.Title,
		StylePrompt(sb.ArtStyle), sb.StyleModifiers,
		strings.Join(a.ColorPalette, ", "),
		charactersText(a.Characters),
		strings.Join(a.KeyEntities, ", "),
		a.Atmosphere, a.LineStyle,
		total, sb.Title,
		page.Layout,
		panelsText(page.Panels),
		len(page.Panels),
	)
}

// continuationPrompt relies on the session for style and only restates the
// consistency requirement.
func continuationPrompt(sb types.Storyboard, pageNumber int) string {
	page := sb.Pages[pageNumber-1]
	return fmt.Sprintf(`Generate PAGE %d of %d.
Layout: %s

Keep EXACT visual consistency with the previous pages:
- same character designs (faces, clothing, proportions)
- same color palette and saturation
- same line weight and art style
- same atmosphere and lighting direction

%s

Requirements:
- a single comic page image with %d panels
- clear panel borders
- professional comic lettering for all text
- 16:9 aspect ratio`,
		pageNumber, len(sb.Pages), page.Layout, panelsText(page.Panels), len(page.Panels))
}

// PagePrompt returns the prompt for pageNumber (1-based).
func PagePrompt(sb types.Storyboard, pageNumber int) string {
	if pageNumber == 1 {
		return titlePagePrompt(sb)
	}
	return continuationPrompt(sb, pageNumber)
}
