package deck

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/slidestudy/curator-cli/internal/model"
)

// LoadDecks reads the deck manifest: the list of source PPTX files with
// their per-deck extraction defaults.
func LoadDecks(path string) ([]model.Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "deck: read manifest %s", path)
	}

	var manifest struct {
		Decks []model.Deck `yaml:"decks"`
	}
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, eris.Wrapf(err, "deck: unmarshal manifest %s", path)
	}
	if len(manifest.Decks) == 0 {
		return nil, eris.Errorf("deck: manifest %s lists no decks", path)
	}

	seen := make(map[string]bool, len(manifest.Decks))
	for _, d := range manifest.Decks {
		if d.ID == "" || d.Title == "" || d.Source == "" {
			return nil, eris.Errorf("deck: manifest entry %q needs id, title and source", d.ID)
		}
		if seen[d.ID] {
			return nil, eris.Errorf("deck: duplicate deck id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return manifest.Decks, nil
}
