package types

// Archetype is the narrative shape picked for a comic.
type Archetype string

const (
	ArchetypeHeist  Archetype = "HEIST"
	ArchetypeOops   Archetype = "OOPS"
	ArchetypeSaga   Archetype = "SAGA"
	ArchetypeLurker Archetype = "LURKER"
)

// ArtStyle is one of the fixed visual treatments.
type ArtStyle string

const (
	ArtStyleEpicSciFi        ArtStyle = "EPIC_SCIFI"
	ArtStyleNoirThriller     ArtStyle = "NOIR_THRILLER"
	ArtStyleRetroComic       ArtStyle = "RETRO_COMIC"
	ArtStyleMinimalXKCD      ArtStyle = "MINIMAL_XKCD"
	ArtStyleCyberpunk        ArtStyle = "CYBERPUNK"
	ArtStylePropagandaPoster ArtStyle = "PROPAGANDA_POSTER"
)

var (
	Archetypes = []Archetype{ArchetypeHeist, ArchetypeOops, ArchetypeSaga, ArchetypeLurker}
	ArtStyles  = []ArtStyle{
		ArtStyleEpicSciFi, ArtStyleNoirThriller, ArtStyleRetroComic,
		ArtStyleMinimalXKCD, ArtStyleCyberpunk, ArtStylePropagandaPoster,
	}
)

// Storyboard (plan) ---------------------------------------------------------------

type CharacterDesign struct {
	Name           string   `json:"name" validate:"required"`
	Appearance     string   `json:"appearance" validate:"required"`
	RecurringProps []string `json:"recurringProps"`
}

// VisualAnchors is the consistency contract threaded through every page prompt.
type VisualAnchors struct {
	ColorPalette []string          `json:"colorPalette" validate:"required,min=1"`
	Characters   []CharacterDesign `json:"characters" validate:"dive"`
	KeyEntities  []string          `json:"keyEntities"`
	Atmosphere   string            `json:"atmosphere"`
	LineStyle    string            `json:"lineStyle"`
}

type PanelDescription struct {
	PanelNumber      int    `json:"panelNumber" validate:"min=1"`
	SceneDescription string `json:"sceneDescription" validate:"required"`
	Caption          string `json:"caption,omitempty"`
	Dialogue         string `json:"dialogue,omitempty"`
}

type ComicPage struct {
	PageNumber int                `json:"pageNumber" validate:"min=1"`
	Layout     string             `json:"layout"`
	Panels     []PanelDescription `json:"panels" validate:"required,min=1,dive"`
}

type Storyboard struct {
	Title          string        `json:"title" validate:"required"`
	Archetype      Archetype     `json:"archetype" validate:"required,oneof=HEIST OOPS SAGA LURKER"`
	ArtStyle       ArtStyle      `json:"artStyle" validate:"required,oneof=EPIC_SCIFI NOIR_THRILLER RETRO_COMIC MINIMAL_XKCD CYBERPUNK PROPAGANDA_POSTER"`
	StyleModifiers string        `json:"styleModifiers"`
	VisualAnchors  VisualAnchors `json:"visualAnchors"`
	Pages          []ComicPage   `json:"pages" validate:"required,min=1,dive"`
}

// TotalPanels sums panel counts across the plan's pages.
func (s Storyboard) TotalPanels() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Panels)
	}
	return n
}
