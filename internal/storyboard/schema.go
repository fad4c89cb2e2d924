package storyboard

import (
	genai "google.golang.org/genai"

	"vulncomics/internal/types"
)

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var storyboardSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":          str("dramatic comic title"),
		"archetype":      {Type: genai.TypeString, Enum: enumOf(types.Archetypes)},
		"artStyle":       {Type: genai.TypeString, Enum: enumOf(types.ArtStyles)},
		"styleModifiers": str("extra style notes appended to the base art style"),
		"visualAnchors": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"colorPalette": strList("3-5 colors with hex codes"),
				"characters": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":           str(""),
							"appearance":     str("detailed, distinctive visual description"),
							"recurringProps": strList(""),
						},
						Required: []string{"name", "appearance"},
					},
				},
				"keyEntities": strList("visual metaphors for important concepts"),
				"atmosphere":  str("overall mood"),
				"lineStyle":   str("drawing style notes"),
			},
			Required: []string{"colorPalette", "characters", "keyEntities", "atmosphere", "lineStyle"},
		},
		"pages": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"pageNumber": {Type: genai.TypeInteger},
					"layout":     str("panel arrangement"),
					"panels": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"panelNumber":      {Type: genai.TypeInteger},
								"sceneDescription": str("one concrete scene"),
								"caption":          str("under 15 words"),
								"dialogue":         str(""),
							},
							Required: []string{"panelNumber", "sceneDescription"},
						},
					},
				},
				Required: []string{"pageNumber", "layout", "panels"},
			},
		},
	},
	Required: []string{"title", "archetype", "artStyle", "visualAnchors", "pages"},
}
