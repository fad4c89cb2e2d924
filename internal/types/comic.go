package types

import "time"

type GeneratedPage struct {
	PageNumber int    `json:"pageNumber"`
	ImageURL   string `json:"imageUrl"`
}

// Comic is a fully rendered storyboard. Pages are contiguous from 1..PageCount.
type Comic struct {
	Hash        string          `json:"comicHash"`
	Title       string          `json:"title"`
	Archetype   Archetype       `json:"archetype"`
	ArtStyle    ArtStyle        `json:"artStyle"`
	PageCount   int             `json:"pageCount"`
	TotalPanels int             `json:"totalPanels"`
	Pages       []GeneratedPage `json:"pages"`
	ShareURL    string          `json:"shareUrl"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ComicMetadata is the share-page view of a stored comic.
type ComicMetadata struct {
	Hash         string          `json:"comicHash"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PageCount    int             `json:"pageCount"`
	Pages        []GeneratedPage `json:"pages"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}
