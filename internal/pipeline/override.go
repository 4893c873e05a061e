package pipeline

import (
	"strings"

	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// metadataGet reads a metadata field by its dataset key.
func metadataGet(m *model.Metadata, key string) string {
	switch key {
	case "year":
		return m.Year
	case "period":
		return m.Period
	case "author":
		return m.Author
	case "productionPlace":
		return m.ProductionPlace
	case "region":
		return m.Region
	case "style":
		return m.Style
	case "material":
		return m.Material
	case "recordType":
		return m.RecordType
	case "historicalBackgroundZh":
		return m.HistoricalBackgroundZh
	case "historicalBackgroundEn":
		return m.HistoricalBackgroundEn
	}
	return ""
}

// metadataSet writes a metadata field by its dataset key. Unknown keys are
// ignored so a stale override table cannot corrupt records.
func metadataSet(m *model.Metadata, key, value string) {
	switch key {
	case "year":
		m.Year = value
	case "period":
		m.Period = value
	case "author":
		m.Author = value
	case "productionPlace":
		m.ProductionPlace = value
	case "region":
		m.Region = value
	case "style":
		m.Style = value
	case "material":
		m.Material = value
	case "recordType":
		m.RecordType = value
	case "historicalBackgroundZh":
		m.HistoricalBackgroundZh = value
	case "historicalBackgroundEn":
		m.HistoricalBackgroundEn = value
	}
}

func isPlaceholderValue(v string) bool {
	return v == "" || v == "N/A" || v == model.NAReference
}

// applyEnrichment layers content-keyword enrichment rules over extracted
// metadata. Background and style fields always take the rule value; the
// author only yields when extraction produced nothing better than a
// fallback; other fields fill placeholders only.
func applyEnrichment(title, description string, meta *model.Metadata, sources []string, rs *rules.Set) []string {
	blob := strings.ToLower(title + " " + description)

	for _, rule := range rs.Enrichments {
		if !rule.Fires(blob) {
			continue
		}
		for key, value := range rule.Set {
			current := metadataGet(meta, key)
			switch {
			case key == "historicalBackgroundZh" || key == "historicalBackgroundEn" || key == "style":
				metadataSet(meta, key, value)
			case key == "author":
				if isPlaceholderValue(current) || strings.HasSuffix(current, "artist") {
					metadataSet(meta, key, value)
				}
			case value != "" && isPlaceholderValue(current):
				metadataSet(meta, key, value)
			}
		}
		sources = uniqueOrder(append(sources, rule.Sources...))
	}
	return sources
}

// applyOverride applies an identifier-keyed manual correction. Override
// metadata wins unconditionally, including explicit empty values; a non-nil
// source list replaces the accumulated one.
func applyOverride(id string, title, description string, meta *model.Metadata, sources []string, rs *rules.Set) (string, string, []string) {
	override, ok := rs.Overrides[id]
	if !ok {
		return title, description, uniqueOrder(sources)
	}

	if override.Title != "" {
		title = override.Title
	}
	if override.Description != "" {
		description = override.Description
	}
	for key, value := range override.Metadata {
		metadataSet(meta, key, value)
	}
	if override.Sources != nil {
		sources = *override.Sources
	}
	return title, description, uniqueOrder(sources)
}
