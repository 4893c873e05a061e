package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/deck"
	"github.com/slidestudy/curator-cli/internal/extract"
	"github.com/slidestudy/curator-cli/internal/model"
	"github.com/slidestudy/curator-cli/internal/rules"
)

// Builder turns slide decks into the published dataset.
type Builder struct {
	Rules     *rules.Set
	Params    extract.Params
	AssetsDir string
}

// carryover holds the last substantive artwork's metadata within a deck,
// used to fill detail/repeat slides that restate an object already shown.
type carryover struct {
	year, period, author, material string
	place, region, style           string
}

// Run builds records for every deck and assembles the dataset payload.
// A missing deck source is logged and skipped, not fatal.
func (b *Builder) Run(decks []model.Deck) (*model.Dataset, error) {
	ds := &model.Dataset{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Decks:       decks,
		Stats:       make(map[string]model.DeckStats, len(decks)),
	}

	for _, d := range decks {
		if _, err := os.Stat(d.Source); err != nil {
			zap.L().Warn("deck source missing, skipping",
				zap.String("deck", d.ID), zap.String("source", d.Source))
			continue
		}
		r, closer, err := deck.OpenReader(d.Source)
		if err != nil {
			return nil, err
		}
		records, stats, err := b.BuildDeck(d, r)
		closer.Close()
		if err != nil {
			return nil, err
		}
		ds.Items = append(ds.Items, records...)
		ds.Stats[d.ID] = stats
		zap.L().Info("deck built",
			zap.String("deck", d.ID),
			zap.Int("slides", stats.Slides),
			zap.Int("items", stats.Items),
			zap.Int("skipped_images", stats.SkippedUnsupportedImages),
			zap.Int("fallback_authors", stats.FallbackAuthors))
	}

	sort.Slice(ds.Items, func(i, j int) bool {
		a, c := ds.Items[i], ds.Items[j]
		if a.DeckTitle != c.DeckTitle {
			return a.DeckTitle < c.DeckTitle
		}
		if a.SlideNumber != c.SlideNumber {
			return a.SlideNumber < c.SlideNumber
		}
		return a.ImageIndex < c.ImageIndex
	})
	ds.Count = len(ds.Items)
	return ds, nil
}

// BuildDeck extracts every supported image of every slide into a record,
// writing image assets under AssetsDir/<deckID>/.
func (b *Builder) BuildDeck(d model.Deck, r *deck.Reader) ([]model.SlideRecord, model.DeckStats, error) {
	slides, err := r.Slides()
	if err != nil {
		return nil, model.DeckStats{}, err
	}

	deckDir := filepath.Join(b.AssetsDir, d.ID)
	if err := os.MkdirAll(deckDir, 0o755); err != nil {
		return nil, model.DeckStats{}, eris.Wrapf(err, "pipeline: create %s", deckDir)
	}

	var records []model.SlideRecord
	stats := model.DeckStats{Slides: len(slides)}
	written := map[string]string{}
	var prev carryover

	for _, slide := range slides {
		for i, target := range slide.ImageTargets {
			idx := i + 1
			ext := strings.ToLower(path.Ext(target))
			if !deck.SupportedImageExt[ext] {
				stats.SkippedUnsupportedImages++
				continue
			}

			assetRel, ok := written[target]
			if !ok {
				img, err := r.ReadImage(target)
				if err != nil {
					return nil, stats, err
				}
				name := fmt.Sprintf("s%03d_i%02d%s", slide.Number, idx, ext)
				outPath := filepath.Join(deckDir, name)
				if _, err := os.Stat(outPath); os.IsNotExist(err) {
					if err := os.WriteFile(outPath, img, 0o644); err != nil {
						return nil, stats, eris.Wrapf(err, "pipeline: write %s", outPath)
					}
				}
				assetRel = path.Join("assets", d.ID, name)
				written[target] = assetRel
			}

			rec, fellBack := b.buildRecord(d, slide, idx, assetRel, &prev)
			if fellBack {
				stats.FallbackAuthors++
			}
			records = append(records, rec)
			stats.Items++
		}
	}
	return records, stats, nil
}

// buildRecord runs the extractors over one slide image and layers the
// carryover, backfill, enrichment and override stages in order.
func (b *Builder) buildRecord(d model.Deck, slide deck.Slide, idx int, assetRel string, prev *carryover) (model.SlideRecord, bool) {
	text := extract.Normalize(slide.Text)
	id := fmt.Sprintf("%s-s%03d-i%02d", d.ID, slide.Number, idx)

	title := extract.Title(text, d.Title, slide.Number, idx, b.Rules, b.Params)
	description := text

	year := extract.Year(text, b.Params)
	period := extract.Period(text, year)
	region := extract.Region(text, b.Rules, d.DefaultRegion)
	place := extract.ProductionPlace(text, b.Rules, "")
	placeDefaulted := place == ""
	if placeDefaulted {
		place = region
	}
	style := extract.Style(text, b.Rules, d.DefaultStyle)
	material := extract.Material(text, b.Rules)
	bgZH, bgEN, bgSources := Backgrounds(text, d, style, region, b.Rules)

	author := extract.Author(text, b.Rules, b.Params)
	usedFallbackAuthor := false
	if author == "" {
		author = place + " artist"
		usedFallbackAuthor = true
	}

	// Detail and repeat slides inherit the previous work's dating, material
	// and attribution where this slide says nothing better.
	if extract.IsDetailLike(text, b.Rules) {
		if year == "" && prev.year != "" {
			year = prev.year
		}
		if period == "" && prev.period != "" {
			period = prev.period
		}
		if material == model.MaterialNotStated && prev.material != "" {
			material = prev.material
		}
		if usedFallbackAuthor && prev.author != "" && !extract.IsFallbackAuthor(prev.author) {
			author = prev.author
			usedFallbackAuthor = false
		}
		if placeDefaulted && prev.place != "" {
			place = prev.place
		}
	}

	recordType := string(extract.RecordType(title, text, b.Rules))

	if year == "" && period != "" && recordType == string(model.RecordTypeArtwork) {
		year = "c. " + period
	}
	if recordType == string(model.RecordTypeReference) {
		if year == "" {
			year = model.NAReference
		}
		if period == "" {
			period = model.NAReference
		}
	}

	meta := model.Metadata{
		Year:                   year,
		Period:                 period,
		Author:                 author,
		ProductionPlace:        place,
		Region:                 region,
		Style:                  style,
		Material:               material,
		RecordType:             recordType,
		HistoricalBackgroundZh: bgZH,
		HistoricalBackgroundEn: bgEN,
	}
	bgSources = applyEnrichment(title, description, &meta, bgSources, b.Rules)
	title, description, bgSources = applyOverride(id, title, description, &meta, bgSources, b.Rules)

	if meta.Author == "" {
		fallbackFrom := meta.ProductionPlace
		if fallbackFrom == "" {
			fallbackFrom = meta.Region
		}
		meta.Author = fallbackFrom + " artist"
		usedFallbackAuthor = true
	}

	meta.HistoricalBackgroundSources = bgSources
	if meta.HistoricalBackgroundZh != "" || meta.HistoricalBackgroundEn != "" {
		meta.HistoricalBackground = meta.HistoricalBackgroundZh + "\n" + meta.HistoricalBackgroundEn
	}

	tags := []string{d.Title}
	tags = append(tags, d.Tags...)
	tags = append(tags, meta.Region, meta.Style, meta.ProductionPlace)
	if meta.Period != "" {
		tags = append(tags, meta.Period)
	}
	if meta.Year != "" {
		tags = append(tags, meta.Year)
	}
	if meta.Material != model.MaterialNotStated {
		tags = append(tags, meta.Material)
	}
	tags = uniqueOrder(tags)
	sort.Strings(tags)

	// Remember substantive artworks for the next detail slide.
	if meta.RecordType == string(model.RecordTypeArtwork) &&
		(meta.Year != "" || meta.Period != "" || meta.Material != model.MaterialNotStated || !strings.HasSuffix(meta.Author, "artist")) {
		carriedMaterial := meta.Material
		if carriedMaterial == model.MaterialNotStated {
			carriedMaterial = ""
		}
		*prev = carryover{
			year:     meta.Year,
			period:   meta.Period,
			author:   meta.Author,
			material: carriedMaterial,
			place:    meta.ProductionPlace,
			region:   meta.Region,
			style:    meta.Style,
		}
	}

	return model.SlideRecord{
		ID:               id,
		DeckID:           d.ID,
		DeckTitle:        d.Title,
		SlideNumber:      slide.Number,
		ImageIndex:       idx,
		Title:            title,
		Description:      description,
		StudyDescription: StudyDescription(meta.Material, meta.Period, meta.HistoricalBackgroundZh, meta.HistoricalBackgroundEn),
		Image:            assetRel,
		Metadata:         meta,
		Tags:             tags,
	}, usedFallbackAuthor
}
