package setup

import (
	"maps"
	"slices"

	"github.com/MHostile/root-automated-setup/internal/catalog"
)

// NoIndex marks an unset faction pool or seat cursor
const NoIndex = -1

// Component is the mutable, per-setup view of a catalog entry. Only the
// attributes relevant to Kind are populated.
type Component struct {
	Kind      catalog.Kind `json:"kind"`
	Code      string       `json:"code"`
	Expansion string       `json:"expansion,omitempty"`
	Enabled   bool         `json:"enabled"`

	// expansion
	Base bool `json:"base,omitempty"`
	Bots bool `json:"bots,omitempty"`
	// faction
	Militant bool `json:"militant,omitempty"`
	Vagabond bool `json:"vagabond,omitempty"`
	// map
	UseLandmark bool   `json:"use_landmark,omitempty"`
	Landmark    string `json:"landmark,omitempty"`
	// landmark
	MinPlayers int `json:"min_players,omitempty"`
	// hireling
	Factions []string `json:"factions,omitempty"`
}

// Components holds every component grouped by kind, in catalog order
type Components map[catalog.Kind][]Component

// HirelingSlot is a drawn hireling. Limited hirelings are set up on their
// demoted side.
type HirelingSlot struct {
	Code    string `json:"code"`
	Limited bool   `json:"limited"`
}

// Parameters are the scalar setup choices and derived assignments.
type Parameters struct {
	PlayerCount      int            `json:"player_count"`
	LandmarkCount    int            `json:"landmark_count"`
	FixedFirstPlayer bool           `json:"fixed_first_player"`
	FirstPlayer      int            `json:"first_player,omitempty"`
	ExcludedFactions []string       `json:"excluded_factions,omitempty"`
	ErrorMessage     ValidationCode `json:"error_message,omitempty"`
	Map              string         `json:"map,omitempty"`
	Deck             string         `json:"deck,omitempty"`
	Landmark1        string         `json:"landmark1,omitempty"`
	Landmark2        string         `json:"landmark2,omitempty"`
	Hirelings        []HirelingSlot `json:"hirelings,omitempty"`
}

// FactionEntry is one faction offered in the faction pool, with its paired
// vagabond when the faction needs one.
type FactionEntry struct {
	Faction  string `json:"faction"`
	Militant bool   `json:"militant"`
	Vagabond string `json:"vagabond,omitempty"`
	Claimed  bool   `json:"claimed"`
	Seat     int    `json:"seat"`
}

// Flow tracks where the walkthrough is.
type Flow struct {
	CurrentStep         Step           `json:"current_step"`
	SkippedSteps        map[Step]bool  `json:"skipped_steps"`
	FactionPool         []FactionEntry `json:"faction_pool,omitempty"`
	CurrentPlayerIndex  int            `json:"current_player_index"`
	CurrentFactionIndex int            `json:"current_faction_index"`
}

// Snapshot is a complete, self-contained copy of setup state.
type Snapshot struct {
	Components Components `json:"components"`
	Parameters Parameters `json:"parameters"`
	Flow       Flow       `json:"flow"`
}

// State is the live setup state plus its undo/redo history.
type State struct {
	Snapshot
	PastSteps   []Snapshot `json:"past_steps,omitempty"`
	FutureSteps []Snapshot `json:"future_steps,omitempty"`
}

// StateOptions are the initial scalar parameters of a new setup
type StateOptions struct {
	PlayerCount      int
	LandmarkCount    int
	FixedFirstPlayer bool
}

// DefaultStateOptions returns a four player setup with one landmark
func DefaultStateOptions() StateOptions {
	return StateOptions{PlayerCount: 4, LandmarkCount: 1}
}

// NewState builds the initial setup state from a catalog. Only the base
// expansion starts enabled; every other component starts enabled so it is
// available as soon as its expansion is.
func NewState(cat *catalog.Catalog, opts StateOptions) *State {
	comps := make(Components, len(catalog.Kinds))
	for _, e := range cat.Expansions {
		comps[catalog.KindExpansion] = append(comps[catalog.KindExpansion], Component{
			Kind: catalog.KindExpansion, Code: e.Code, Enabled: e.Base, Base: e.Base, Bots: e.Bots,
		})
	}
	for _, f := range cat.Factions {
		comps[catalog.KindFaction] = append(comps[catalog.KindFaction], Component{
			Kind: catalog.KindFaction, Code: f.Code, Expansion: f.Expansion, Enabled: true,
			Militant: f.Militant, Vagabond: f.Vagabond,
		})
	}
	for _, m := range cat.Maps {
		comps[catalog.KindMap] = append(comps[catalog.KindMap], Component{
			Kind: catalog.KindMap, Code: m.Code, Expansion: m.Expansion, Enabled: true,
			UseLandmark: m.UseLandmark, Landmark: m.Landmark,
		})
	}
	for _, d := range cat.Decks {
		comps[catalog.KindDeck] = append(comps[catalog.KindDeck], Component{
			Kind: catalog.KindDeck, Code: d.Code, Expansion: d.Expansion, Enabled: true,
		})
	}
	for _, l := range cat.Landmarks {
		comps[catalog.KindLandmark] = append(comps[catalog.KindLandmark], Component{
			Kind: catalog.KindLandmark, Code: l.Code, Expansion: l.Expansion, Enabled: true,
			MinPlayers: l.MinPlayers,
		})
	}
	for _, h := range cat.Hirelings {
		comps[catalog.KindHireling] = append(comps[catalog.KindHireling], Component{
			Kind: catalog.KindHireling, Code: h.Code, Expansion: h.Expansion, Enabled: true,
			Factions: slices.Clone(h.Factions),
		})
	}
	for _, v := range cat.Vagabonds {
		comps[catalog.KindVagabond] = append(comps[catalog.KindVagabond], Component{
			Kind: catalog.KindVagabond, Code: v.Code, Expansion: v.Expansion, Enabled: true,
		})
	}

	skipped := map[Step]bool{StepSetUpBots: true}
	for _, step := range hirelingSetupSteps {
		skipped[step] = true
	}

	return &State{
		Snapshot: Snapshot{
			Components: comps,
			Parameters: Parameters{
				PlayerCount:      opts.PlayerCount,
				LandmarkCount:    opts.LandmarkCount,
				FixedFirstPlayer: opts.FixedFirstPlayer,
			},
			Flow: Flow{
				CurrentStep:         StepChooseExpansions,
				SkippedSteps:        skipped,
				CurrentPlayerIndex:  NoIndex,
				CurrentFactionIndex: NoIndex,
			},
		},
	}
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	var comps Components
	if s.Components != nil {
		comps = make(Components, len(s.Components))
		for kind, list := range s.Components {
			copied := slices.Clone(list)
			for i := range copied {
				copied[i].Factions = slices.Clone(copied[i].Factions)
			}
			comps[kind] = copied
		}
	}

	params := s.Parameters
	params.ExcludedFactions = slices.Clone(s.Parameters.ExcludedFactions)
	params.Hirelings = slices.Clone(s.Parameters.Hirelings)

	flow := s.Flow
	flow.SkippedSteps = maps.Clone(s.Flow.SkippedSteps)
	flow.FactionPool = slices.Clone(s.Flow.FactionPool)

	return Snapshot{Components: comps, Parameters: params, Flow: flow}
}

// Clone returns a deep copy of the state including history
func (s *State) Clone() *State {
	clone := &State{Snapshot: s.Snapshot.Clone()}
	if s.PastSteps != nil {
		clone.PastSteps = make([]Snapshot, len(s.PastSteps))
		for i, snap := range s.PastSteps {
			clone.PastSteps[i] = snap.Clone()
		}
	}
	if s.FutureSteps != nil {
		clone.FutureSteps = make([]Snapshot, len(s.FutureSteps))
		for i, snap := range s.FutureSteps {
			clone.FutureSteps[i] = snap.Clone()
		}
	}
	return clone
}

// component returns a pointer to the component so it can be mutated in place
func (s *Snapshot) component(kind catalog.Kind, code string) *Component {
	list := s.Components[kind]
	for i := range list {
		if list[i].Code == code {
			return &list[i]
		}
	}
	return nil
}

func (s *Snapshot) skipSteps(skip bool, steps ...Step) {
	if s.Flow.SkippedSteps == nil {
		s.Flow.SkippedSteps = make(map[Step]bool)
	}
	for _, step := range steps {
		s.Flow.SkippedSteps[step] = skip
	}
}
