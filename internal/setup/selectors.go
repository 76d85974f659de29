package setup

import (
	"slices"

	"github.com/MHostile/root-automated-setup/internal/catalog"
)

// expansionEnabled reports whether the expansion with code is enabled
func (s *Snapshot) expansionEnabled(code string) bool {
	for _, e := range s.Components[catalog.KindExpansion] {
		if e.Code == code {
			return e.Enabled
		}
	}
	return false
}

// available returns copies of the components of kind that belong to an
// enabled expansion. Expansions themselves are always available.
func (s *Snapshot) available(kind catalog.Kind) []Component {
	list := s.Components[kind]
	if kind == catalog.KindExpansion {
		return slices.Clone(list)
	}
	out := make([]Component, 0, len(list))
	for _, c := range list {
		if s.expansionEnabled(c.Expansion) {
			out = append(out, c)
		}
	}
	return out
}

// enabled filters components down to the enabled ones
func enabled(list []Component) []Component {
	out := make([]Component, 0, len(list))
	for _, c := range list {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

func filter(list []Component, keep func(Component) bool) []Component {
	out := make([]Component, 0, len(list))
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func codes(list []Component) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Code
	}
	return out
}

func (s *Snapshot) factionCodes() []string {
	return codes(s.available(catalog.KindFaction))
}

func (s *Snapshot) factionHirelings() []Component {
	return filter(s.available(catalog.KindHireling), func(c Component) bool { return len(c.Factions) > 0 })
}

func (s *Snapshot) enabledIndependentHirelings() []Component {
	return filter(enabled(s.available(catalog.KindHireling)), func(c Component) bool { return len(c.Factions) == 0 })
}

func (s *Snapshot) enabledMilitantFactions() []Component {
	return filter(enabled(s.available(catalog.KindFaction)), func(c Component) bool { return c.Militant })
}

func (s *Snapshot) enabledInsurgentFactions() []Component {
	return filter(enabled(s.available(catalog.KindFaction)), func(c Component) bool { return !c.Militant })
}

// botsAvailable reports whether any enabled expansion ships bot content
func (s *Snapshot) botsAvailable() bool {
	for _, e := range s.Components[catalog.KindExpansion] {
		if e.Enabled && e.Bots {
			return true
		}
	}
	return false
}

// PlayerCountRange returns the inclusive bounds the player count may take.
// Solo play is only possible with bots.
func (s *Snapshot) PlayerCountRange() (int, int) {
	lo := 2
	if !s.Flow.SkippedSteps[StepSetUpBots] {
		lo = 1
	}
	return lo, len(s.factionCodes()) - 1
}
