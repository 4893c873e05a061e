// Package rules loads the static configuration tables that drive metadata
// extraction and source verification: keyword→label maps, background
// narrative rules, manual override tables, and the domain→institution map.
// Tables are loaded once at startup and immutable thereafter; components
// receive them explicitly rather than reading ambient globals.
package rules

import (
	_ "embed"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// KeywordRule maps a canonical label to the lowercase keywords that imply it.
// Rules are evaluated in table order, not sorted by match length.
type KeywordRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Match reports whether any keyword appears in the lowercased text.
func (r KeywordRule) Match(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaterialRule pairs a regular expression with a canonical material label.
// Refines names a broader label that is dropped when this one matches
// (e.g. "Hard-paste porcelain" refines "Porcelain").
type MaterialRule struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
	Refines string `yaml:"refines,omitempty"`

	re *regexp.Regexp
}

// Match reports whether the pattern occurs in the lowercased text.
func (r *MaterialRule) Match(lower string) bool {
	return r.re != nil && r.re.MatchString(lower)
}

// BackgroundRule contributes a bilingual sentence pair (plus citation URLs)
// whenever one of its keywords appears in the slide text.
type BackgroundRule struct {
	Keywords []string `yaml:"keywords"`
	EN       string   `yaml:"en"`
	ZH       string   `yaml:"zh"`
	Sources  []string `yaml:"sources,omitempty"`
}

// EnrichmentRule is a content-keyword override: it fires when any MatchAny
// keyword appears (and, when present, all MatchAll keywords too), setting
// metadata fields and contributing source URLs.
type EnrichmentRule struct {
	MatchAny []string          `yaml:"match_any"`
	MatchAll []string          `yaml:"match_all,omitempty"`
	Set      map[string]string `yaml:"set"`
	Sources  []string          `yaml:"sources,omitempty"`
}

// Fires reports whether the rule applies to the lowercased title+description.
func (r EnrichmentRule) Fires(blob string) bool {
	anyHit := false
	for _, kw := range r.MatchAny {
		if strings.Contains(blob, kw) {
			anyHit = true
			break
		}
	}
	if !anyHit {
		return false
	}
	for _, kw := range r.MatchAll {
		if !strings.Contains(blob, kw) {
			return false
		}
	}
	return true
}

// ManualOverride is an identifier-keyed human correction. A nil Sources
// preserves the record's accumulated source list; a non-nil one replaces it.
type ManualOverride struct {
	Title       string            `yaml:"title,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
	Sources     *[]string         `yaml:"sources,omitempty"`
}

// InstitutionRule maps a URL host (or parent domain) to an institution name.
type InstitutionRule struct {
	Domain string `yaml:"domain"`
	Name   string `yaml:"name"`
}

// TierMarkers hold the host substrings that mark official-collection and
// scholarly domains for tier classification.
type TierMarkers struct {
	Official  []string `yaml:"official"`
	Scholarly []string `yaml:"scholarly"`
}

// VerdictException force-accepts a known-good-but-blocked record.
type VerdictException struct {
	Justification string `yaml:"justification"`
}

// Set is the full immutable rule configuration.
type Set struct {
	Regions   []KeywordRule  `yaml:"regions"`
	Places    []KeywordRule  `yaml:"places"`
	Styles    []KeywordRule  `yaml:"styles"`
	Materials []MaterialRule `yaml:"materials"`

	Backgrounds []BackgroundRule          `yaml:"backgrounds"`
	Enrichments []EnrichmentRule          `yaml:"enrichments"`
	Overrides   map[string]ManualOverride `yaml:"overrides"`

	Institutions      []InstitutionRule           `yaml:"institutions"`
	Tiers             TierMarkers                 `yaml:"tiers"`
	VerdictExceptions map[string]VerdictException `yaml:"verdict_exceptions"`

	ReferenceMarkers  []string `yaml:"reference_markers"`
	DetailMarkers     []string `yaml:"detail_markers"`
	BoilerplateTitles []string `yaml:"boilerplate_titles"`

	AuthorStopwords    []string `yaml:"author_stopwords"`
	AuthorObjectWords  []string `yaml:"author_object_words"`
	NonPersonPrefixes  []string `yaml:"non_person_prefixes"`
	GenericTitleTokens []string `yaml:"generic_title_tokens"`

	authorStop   map[string]bool
	authorObject map[string]bool
	nonPerson    map[string]bool
	genericTitle map[string]bool
}

// Load reads a rule set from the given YAML file, or the embedded defaults
// when path is empty. A malformed table is an error at startup; at run time
// the tables are read-only.
func Load(path string) (*Set, error) {
	raw := defaultsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: read %s", path)
		}
		raw = b
	}

	var s Set
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, eris.Wrap(err, "rules: unmarshal")
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Set) compile() error {
	for i := range s.Materials {
		re, err := regexp.Compile(s.Materials[i].Pattern)
		if err != nil {
			return eris.Wrapf(err, "rules: material pattern %q", s.Materials[i].Pattern)
		}
		s.Materials[i].re = re
	}
	s.authorStop = toSet(s.AuthorStopwords)
	s.authorObject = toSet(s.AuthorObjectWords)
	s.nonPerson = toSet(s.NonPersonPrefixes)
	s.genericTitle = toSet(s.GenericTitleTokens)
	return nil
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}

// IsAuthorStopword reports whether w belongs to the credit-line vocabulary
// that disqualifies an author candidate.
func (s *Set) IsAuthorStopword(w string) bool { return s.authorStop[strings.ToLower(w)] }

// IsAuthorObjectWord reports whether w names an object rather than a person.
func (s *Set) IsAuthorObjectWord(w string) bool { return s.authorObject[strings.ToLower(w)] }

// IsNonPersonPrefix reports whether w cannot begin a personal name.
func (s *Set) IsNonPersonPrefix(w string) bool { return s.nonPerson[strings.ToLower(w)] }

// IsGenericTitleToken reports whether w is too generic to distinguish a work.
func (s *Set) IsGenericTitleToken(w string) bool { return s.genericTitle[strings.ToLower(w)] }
