package setup

import (
	"slices"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ComponentView is a component as shown to the user
type ComponentView struct {
	Code      string         `json:"code"`
	Enabled   bool           `json:"enabled"`
	Available bool           `json:"available"`
	Locked    ValidationCode `json:"locked,omitempty"`
}

// View is the read model handed to rendering collaborators.
type View struct {
	CurrentStep         Step                             `json:"current_step"`
	Skipped             bool                             `json:"skipped"`
	ErrorMessage        ValidationCode                   `json:"error_message,omitempty"`
	SkippedSteps        []Step                           `json:"skipped_steps"`
	PastSteps           []Step                           `json:"past_steps"`
	FutureSteps         []Step                           `json:"future_steps"`
	Parameters          Parameters                       `json:"parameters"`
	FactionPool         []FactionEntry                   `json:"faction_pool,omitempty"`
	CurrentPlayerIndex  int                              `json:"current_player_index"`
	CurrentFactionIndex int                              `json:"current_faction_index"`
	MinPlayers          int                              `json:"min_players"`
	MaxPlayers          int                              `json:"max_players"`
	UseHirelings        bool                             `json:"use_hirelings"`
	UseBots             bool                             `json:"use_bots"`
	Components          map[catalog.Kind][]ComponentView `json:"components"`
}

// View builds the read model for s. Components are ordered by the collation
// rules of tag.
func (e *Engine) View(s *State, tag language.Tag) View {
	col := collate.New(tag, collate.IgnoreCase)
	lo, hi := s.PlayerCountRange()

	v := View{
		CurrentStep:         s.Flow.CurrentStep,
		Skipped:             s.Flow.SkippedSteps[s.Flow.CurrentStep],
		ErrorMessage:        s.Parameters.ErrorMessage,
		Parameters:          s.Snapshot.Clone().Parameters,
		FactionPool:         append([]FactionEntry(nil), s.Flow.FactionPool...),
		CurrentPlayerIndex:  s.Flow.CurrentPlayerIndex,
		CurrentFactionIndex: s.Flow.CurrentFactionIndex,
		MinPlayers:          lo,
		MaxPlayers:          hi,
		UseHirelings:        !s.Flow.SkippedSteps[StepSetUpHireling1],
		UseBots:             !s.Flow.SkippedSteps[StepSetUpBots],
		Components:          make(map[catalog.Kind][]ComponentView, len(catalog.Kinds)),
	}

	for _, step := range Steps() {
		if s.Flow.SkippedSteps[step] {
			v.SkippedSteps = append(v.SkippedSteps, step)
		}
	}
	for _, snap := range s.PastSteps {
		v.PastSteps = append(v.PastSteps, snap.Flow.CurrentStep)
	}
	for i := len(s.FutureSteps) - 1; i >= 0; i-- {
		v.FutureSteps = append(v.FutureSteps, s.FutureSteps[i].Flow.CurrentStep)
	}

	for _, kind := range catalog.Kinds {
		list := s.Components[kind]
		views := make([]ComponentView, 0, len(list))
		for _, c := range list {
			views = append(views, ComponentView{
				Code:      c.Code,
				Enabled:   c.Enabled,
				Available: kind == catalog.KindExpansion || s.expansionEnabled(c.Expansion),
				Locked:    e.locks.LockedReason(&s.Snapshot, c),
			})
		}
		sortViews(col, views)
		v.Components[kind] = views
	}
	return v
}

func sortViews(col *collate.Collator, views []ComponentView) {
	slices.SortStableFunc(views, func(a, b ComponentView) int {
		return col.CompareString(a.Code, b.Code)
	})
}
