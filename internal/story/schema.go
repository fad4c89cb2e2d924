package story

import genai "google.golang.org/genai"

func int64p(n int64) *int64 { return &n }
func boolp(b bool) *bool    { return &b }

func bullets(desc string, min, max int64) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: desc,
		Items:       &genai.Schema{Type: genai.TypeString},
		MinItems:    int64p(min),
		MaxItems:    int64p(max),
	}
}

// cardContent is the model's answer for an active finding.
type cardContent struct {
	Title          string   `json:"title" validate:"required"`
	WhatHappened   []string `json:"whatHappened" validate:"required,min=1,dive,required"`
	WhyShouldICare []string `json:"whyShouldICare" validate:"required,min=1,dive,required"`
	WhatShouldIDo  []string `json:"whatShouldIDo" validate:"required,min=1,dive,required"`
	IncidentDate   string   `json:"incidentDate"`
}

var cardContentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":          {Type: genai.TypeString, Description: "catchy, memorable title for the incident"},
		"whatHappened":   bullets("what happened, in plain language", 3, 5),
		"whyShouldICare": bullets("why a user of the package should care", 2, 3),
		"whatShouldIDo":  bullets("actionable remediation steps", 2, 3),
		"incidentDate":   {Type: genai.TypeString, Description: "approximate date as YYYY-MM", Nullable: boolp(true)},
	},
	Required:         []string{"title", "whatHappened", "whyShouldICare", "whatShouldIDo"},
}

// historicalIncident is the model's answer when asked about a package's past.
type historicalIncident struct {
	HasIncident    bool     `json:"hasIncident"`
	PackageName    string   `json:"packageName"`
	Title          string   `json:"title"`
	Severity       string   `json:"severity"`
	WhatHappened   []string `json:"whatHappened"`
	WhyShouldICare []string `json:"whyShouldICare"`
	WhatShouldIDo  []string `json:"whatShouldIDo"`
	IncidentDate   string   `json:"incidentDate"`
	Sources        []string `json:"sources"`
}

// usable reports whether the answer describes a real incident with enough
// content for a card.
func (h historicalIncident) usable() bool {
	return h.HasIncident &&
		h.Title != "" &&
		len(h.WhatHappened) > 0 &&
		len(h.WhyShouldICare) > 0 &&
		len(h.WhatShouldIDo) > 0
}

var historicalIncidentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"hasIncident":    {Type: genai.TypeBoolean, Description: "true only for a notable, real incident"},
		"packageName":    {Type: genai.TypeString},
		"title":          {Type: genai.TypeString, Nullable: boolp(true)},
		"severity":       {Type: genai.TypeString, Enum: []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}, Nullable: boolp(true)},
		"whatHappened":   bullets("what happened", 0, 5),
		"whyShouldICare": bullets("why developers should care", 0, 3),
		"whatShouldIDo":  bullets("lessons learned and best practices", 0, 3),
		"incidentDate":   {Type: genai.TypeString, Description: "approximate date as YYYY-MM", Nullable: boolp(true)},
		"sources":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"hasIncident", "packageName"},
}
