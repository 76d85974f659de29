// Package catalog holds the static registry of selectable game components.
//
// The registry is immutable once loaded: enablement lives in setup state, the
// catalog only describes which components exist and what rules they carry.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Kind identifies a component variant
type Kind string

const (
	KindExpansion Kind = "expansion"
	KindFaction   Kind = "faction"
	KindMap       Kind = "map"
	KindDeck      Kind = "deck"
	KindLandmark  Kind = "landmark"
	KindHireling  Kind = "hireling"
	KindVagabond  Kind = "vagabond"
)

// Kinds lists every component kind in registry order
var Kinds = []Kind{KindExpansion, KindFaction, KindMap, KindDeck, KindLandmark, KindHireling, KindVagabond}

// ParseKind resolves a kind name
func ParseKind(name string) (Kind, error) {
	for _, kind := range Kinds {
		if string(kind) == name {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown component kind %q", name)
}

// Expansion is a product that brings components into play when enabled.
type Expansion struct {
	Code string `yaml:"code"`
	Base bool   `yaml:"base"`
	Bots bool   `yaml:"bots"`
}

// Faction is a playable faction.
type Faction struct {
	Code      string `yaml:"code"`
	Expansion string `yaml:"expansion"`
	Militant  bool   `yaml:"militant"`
	Vagabond  bool   `yaml:"vagabond"`
}

// Map is a board. A map with UseLandmark places Landmark itself during setup.
type Map struct {
	Code        string `yaml:"code"`
	Expansion   string `yaml:"expansion"`
	UseLandmark bool   `yaml:"use_landmark"`
	Landmark    string `yaml:"landmark"`
}

// Deck is a shared card deck.
type Deck struct {
	Code      string `yaml:"code"`
	Expansion string `yaml:"expansion"`
}

// Landmark is an optional board feature.
type Landmark struct {
	Code       string `yaml:"code"`
	Expansion  string `yaml:"expansion"`
	MinPlayers int    `yaml:"min_players"`
}

// Hireling is a neutral faction that can be hired. Factions lists the factions
// that cannot be played alongside it; an empty list marks an independent hireling.
type Hireling struct {
	Code      string   `yaml:"code"`
	Expansion string   `yaml:"expansion"`
	Factions  []string `yaml:"factions"`
}

// Vagabond is a vagabond character paired with vagabond factions.
type Vagabond struct {
	Code      string `yaml:"code"`
	Expansion string `yaml:"expansion"`
}

// Catalog is the full component registry
type Catalog struct {
	Expansions []Expansion `yaml:"expansions"`
	Factions   []Faction   `yaml:"factions"`
	Maps       []Map       `yaml:"maps"`
	Decks      []Deck      `yaml:"decks"`
	Landmarks  []Landmark  `yaml:"landmarks"`
	Hirelings  []Hireling  `yaml:"hirelings"`
	Vagabonds  []Vagabond  `yaml:"vagabonds"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path loads the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := cat.checkReferences(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Codes returns the codes of every component of kind, in catalog order.
func (c *Catalog) Codes(kind Kind) []string {
	var codes []string
	switch kind {
	case KindExpansion:
		for _, e := range c.Expansions {
			codes = append(codes, e.Code)
		}
	case KindFaction:
		for _, f := range c.Factions {
			codes = append(codes, f.Code)
		}
	case KindMap:
		for _, m := range c.Maps {
			codes = append(codes, m.Code)
		}
	case KindDeck:
		for _, d := range c.Decks {
			codes = append(codes, d.Code)
		}
	case KindLandmark:
		for _, l := range c.Landmarks {
			codes = append(codes, l.Code)
		}
	case KindHireling:
		for _, h := range c.Hirelings {
			codes = append(codes, h.Code)
		}
	case KindVagabond:
		for _, v := range c.Vagabonds {
			codes = append(codes, v.Code)
		}
	}
	return codes
}

// Has reports whether code names a component of kind
func (c *Catalog) Has(kind Kind, code string) bool {
	for _, known := range c.Codes(kind) {
		if known == code {
			return true
		}
	}
	return false
}

// Expansion looks up an expansion by code
func (c *Catalog) Expansion(code string) (Expansion, bool) {
	for _, e := range c.Expansions {
		if e.Code == code {
			return e, true
		}
	}
	return Expansion{}, false
}

func (c *Catalog) checkReferences() error {
	for _, kind := range Kinds {
		seen := make(map[string]bool)
		for _, code := range c.Codes(kind) {
			if seen[code] {
				return fmt.Errorf("duplicate %s code %q", kind, code)
			}
			seen[code] = true
		}
	}

	expansionOf := func(kind Kind, code, expansion string) error {
		if !c.Has(KindExpansion, expansion) {
			return fmt.Errorf("%s %q references unknown expansion %q", kind, code, expansion)
		}
		return nil
	}
	for _, f := range c.Factions {
		if err := expansionOf(KindFaction, f.Code, f.Expansion); err != nil {
			return err
		}
	}
	for _, m := range c.Maps {
		if err := expansionOf(KindMap, m.Code, m.Expansion); err != nil {
			return err
		}
		if m.Landmark != "" && !c.Has(KindLandmark, m.Landmark) {
			return fmt.Errorf("map %q references unknown landmark %q", m.Code, m.Landmark)
		}
	}
	for _, d := range c.Decks {
		if err := expansionOf(KindDeck, d.Code, d.Expansion); err != nil {
			return err
		}
	}
	for _, l := range c.Landmarks {
		if err := expansionOf(KindLandmark, l.Code, l.Expansion); err != nil {
			return err
		}
	}
	for _, h := range c.Hirelings {
		if err := expansionOf(KindHireling, h.Code, h.Expansion); err != nil {
			return err
		}
		for _, faction := range h.Factions {
			if !c.Has(KindFaction, faction) {
				return fmt.Errorf("hireling %q references unknown faction %q", h.Code, faction)
			}
		}
	}
	for _, v := range c.Vagabonds {
		if err := expansionOf(KindVagabond, v.Code, v.Expansion); err != nil {
			return err
		}
	}

	bases := 0
	for _, e := range c.Expansions {
		if e.Base {
			bases++
		}
	}
	if bases != 1 {
		return fmt.Errorf("catalog needs exactly one base expansion, found %d", bases)
	}
	return nil
}
