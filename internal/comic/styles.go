package comic

import "vulncomics/internal/types"

// stylePrompts are the base image-style directives per art style.
var stylePrompts = map[types.ArtStyle]string{
	types.ArtStyleEpicSciFi: "in the style of Moebius/Jean Giraud, epic science fiction illustration, " +
		"sweeping vistas, dramatic lighting, cosmic scale, detailed linework",
	types.ArtStyleNoirThriller: "film noir comic style, high contrast black and white with selective color accents, " +
		"dramatic shadows, 1940s detective aesthetic, moody atmosphere",
	types.ArtStyleRetroComic: "classic 1960s superhero comic book style, bold outlines, Ben-Day dots, " +
		"dynamic poses, bright primary colors, action-packed",
	types.ArtStyleMinimalXKCD: "simple clean line art, minimalist style, stick figures with expressive poses, " +
		"clean white background, subtle visual humor",
	types.ArtStyleCyberpunk: "cyberpunk aesthetic, neon colors on dark backgrounds, glitch effects, " +
		"rain-soaked streets, holographic displays, high-tech low-life atmosphere",
	types.ArtStylePropagandaPoster: "vintage propaganda poster style, bold geometric shapes, " +
		"limited color palette (3-4 colors), stylized heroic figures, strong typography",
}

// StylePrompt returns the base directive for s; unknown styles get a neutral one.
func StylePrompt(s types.ArtStyle) string {
	if p, ok := stylePrompts[s]; ok {
		return p
	}
	return "clean modern comic book style, clear panel borders, readable lettering"
}
