// Package model defines the shared data types flowing through the pipeline:
// deck descriptors, extracted slide records, and verification results.
package model

// RecordType distinguishes catalogued artworks from context-only references.
type RecordType string

const (
	RecordTypeArtwork   RecordType = "artwork"
	RecordTypeReference RecordType = "reference"
)

// Sentinel field values. These exact strings appear in the published dataset
// and downstream tools match on them, so they must not drift.
const (
	MaterialNotStated = "Not stated in source slide."
	NAReference       = "N/A (reference)"
)

// Deck describes one source slide deck. Defaults fill metadata fields when
// extraction finds nothing in the slide text.
type Deck struct {
	ID     string `yaml:"id" json:"id"`
	Title  string `yaml:"title" json:"title"`
	Source string `yaml:"source" json:"-"`

	DefaultRegion       string   `yaml:"default_region" json:"defaultRegion"`
	DefaultStyle        string   `yaml:"default_style" json:"defaultStyle"`
	DefaultBackgroundEN string   `yaml:"default_background_en" json:"defaultBackgroundEn"`
	DefaultBackgroundZH string   `yaml:"default_background_zh" json:"defaultBackgroundZh"`
	Tags                []string `yaml:"tags" json:"tags"`
}

// Metadata is the structured description attached to a slide record.
type Metadata struct {
	Year            string `json:"year"`
	Period          string `json:"period"`
	Author          string `json:"author"`
	ProductionPlace string `json:"productionPlace"`
	Region          string `json:"region"`
	Style           string `json:"style"`
	Material        string `json:"material"`
	RecordType      string `json:"recordType"`

	HistoricalBackground        string   `json:"historicalBackground"`
	HistoricalBackgroundZh      string   `json:"historicalBackgroundZh"`
	HistoricalBackgroundEn      string   `json:"historicalBackgroundEn"`
	HistoricalBackgroundSources []string `json:"historicalBackgroundSources"`
}

// SlideRecord is one image extracted from one slide, with its derived
// metadata. IDs take the form <deckID>-sNNN-iNN.
type SlideRecord struct {
	ID          string `json:"id"`
	DeckID      string `json:"deckId"`
	DeckTitle   string `json:"deckTitle"`
	SlideNumber int    `json:"slideNumber"`
	ImageIndex  int    `json:"imageIndex"`

	Title            string   `json:"title"`
	Description      string   `json:"description"`
	StudyDescription string   `json:"studyDescription"`
	Image            string   `json:"image"`
	Metadata         Metadata `json:"metadata"`
	Tags             []string `json:"tags"`
}

// DeckStats summarizes one deck's contribution to the dataset.
type DeckStats struct {
	Slides                   int `json:"slides"`
	Items                    int `json:"items"`
	SkippedUnsupportedImages int `json:"skippedUnsupportedImages"`
	FallbackAuthors          int `json:"fallbackAuthors"`
}

// Dataset is the top-level artworks.json payload.
type Dataset struct {
	GeneratedAt string               `json:"generatedAt"`
	Count       int                  `json:"count"`
	Items       []SlideRecord        `json:"items"`
	Decks       []Deck               `json:"decks"`
	Stats       map[string]DeckStats `json:"stats"`
}
