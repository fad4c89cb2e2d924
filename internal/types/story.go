package types

// StoryType distinguishes active findings from historical incidents.
type StoryType string

const (
	StoryActive            StoryType = "ACTIVE"
	StoryHistoricalYours   StoryType = "HISTORICAL_YOURS"
	StoryHistoricalGeneral StoryType = "HISTORICAL_GENERAL"
)

// StoryCard is the narrative unit shown to the user and fed to the storyboard planner.
type StoryCard struct {
	ID             string    `json:"id" validate:"required"`
	Title          string    `json:"title" validate:"required"`
	PackageName    string    `json:"packageName" validate:"required"`
	PackageVersion string    `json:"packageVersion"`
	StoryType      StoryType `json:"storyType" validate:"required,oneof=ACTIVE HISTORICAL_YOURS HISTORICAL_GENERAL"`
	Severity       Severity  `json:"severity,omitempty"`

	WhatHappened   []string `json:"whatHappened" validate:"required,min=1"`
	WhyShouldICare []string `json:"whyShouldICare" validate:"required,min=1"`
	WhatShouldIDo  []string `json:"whatShouldIDo" validate:"required,min=1"`
	IncidentDate   string   `json:"incidentDate,omitempty"`
	Sources        []string `json:"sources"`
}
