package setup

import (
	"fmt"
	"slices"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
)

// advance carries one advance attempt. validate may stage draw pools here;
// apply consumes them.
type advance struct {
	snap   *Snapshot
	source random.Source
	// stay keeps the cursor on the current step after a successful advance
	stay bool

	mapPool      []Component
	deckPool     []Component
	landmarkPool []Component
	hirelingPool []Component
	factionPool  []Component
	insurgents   []Component
	vagabondPool []Component
}

func (a *advance) take(pool *[]Component) (Component, error) {
	c, err := random.TakeRandom(a.source, pool)
	if err != nil {
		return Component{}, fmt.Errorf("draw: %w", err)
	}
	return c, nil
}

// toggler returns a toggle action writing to the attempt's working state
func (a *advance) toggler(kind catalog.Kind) func(string, bool) {
	return func(code string, enabled bool) {
		if c := a.snap.component(kind, code); c != nil {
			c.Enabled = enabled
		}
	}
}

// stepRule is the behaviour attached to completing a step. apply and
// computeSkips only run when validate reports no error; finally runs on every
// attempt.
type stepRule struct {
	validate     func(*advance) (ValidationCode, error)
	apply        func(*advance) error
	computeSkips func(*advance)
	finally      func(*advance)
}

var stepRules = map[Step]stepRule{
	StepChooseExpansions: {apply: applyChooseExpansions, computeSkips: skipsChooseExpansions},
	StepSeatPlayers:      {apply: applySeatPlayers},
	StepChooseMap:        {validate: validateChooseMap, apply: applyChooseMap},
	StepChooseDeck:       {validate: validateChooseDeck, apply: applyChooseDeck},
	StepChooseLandmarks:  {validate: validateChooseLandmarks, apply: applyChooseLandmarks, computeSkips: skipsChooseLandmarks},
	StepChooseHirelings:  {validate: validateChooseHirelings, apply: applyChooseHirelings, finally: toggleFactionsForHirelings},
	StepChooseFactions:   {validate: validateChooseFactions, apply: applyChooseFactions},
	StepSelectFaction:    {validate: validateSelectFaction, apply: applySelectFaction},
}

func applyChooseExpansions(a *advance) error {
	p := &a.snap.Parameters

	if decks := a.snap.available(catalog.KindDeck); len(decks) == 1 {
		p.Deck = decks[0].Code
	}

	// Undo can leave the player count outside what the new expansion set
	// supports. The floor only applies while bots are out of play.
	if p.PlayerCount < 2 && a.snap.Flow.SkippedSteps[StepSetUpBots] {
		p.PlayerCount = 2
	} else if maxPlayers := len(a.snap.factionCodes()) - 1; p.PlayerCount > maxPlayers {
		p.PlayerCount = maxPlayers
	}

	// chooseHirelings is skipped below, so stale exclusions must go here
	if len(a.snap.available(catalog.KindHireling)) == 0 && len(p.ExcludedFactions) > 0 {
		p.ExcludedFactions = nil
	}
	return nil
}

func skipsChooseExpansions(a *advance) {
	a.snap.skipSteps(len(a.snap.available(catalog.KindDeck)) == 1, StepChooseDeck)
	a.snap.skipSteps(len(a.snap.available(catalog.KindLandmark)) == 0, landmarkSteps...)

	if len(a.snap.available(catalog.KindHireling)) == 0 {
		a.snap.skipSteps(true, hirelingSteps...)
	} else {
		// hireling setup itself stays opt-in
		a.snap.skipSteps(false, StepChooseHirelings)
	}
}

func applySeatPlayers(a *advance) error {
	p := &a.snap.Parameters
	if p.PlayerCount < 1 {
		return fmt.Errorf("%w: player count %d", ErrInvalidParameter, p.PlayerCount)
	}

	// seat number is turn order, so a fixed first player is always seat 1
	if p.FixedFirstPlayer {
		p.FirstPlayer = 1
	} else {
		p.FirstPlayer = a.source.IntN(p.PlayerCount) + 1
	}

	// faction hirelings need a faction to spare at this player count
	MassToggle(
		a.snap.factionHirelings(),
		Always(p.PlayerCount < len(a.snap.factionCodes())-1),
		a.toggler(catalog.KindHireling),
	)
	return nil
}

func validateChooseMap(a *advance) (ValidationCode, error) {
	a.mapPool = enabled(a.snap.available(catalog.KindMap))
	if len(a.mapPool) == 0 {
		return ErrorNoMap, nil
	}
	return ErrorNone, nil
}

func applyChooseMap(a *advance) error {
	m, err := a.take(&a.mapPool)
	if err != nil {
		return err
	}
	p := &a.snap.Parameters
	p.Map = m.Code

	// drop landmarks unsupported at this player count or placed by the map itself
	MassToggle(
		a.snap.available(catalog.KindLandmark),
		func(l Component) bool {
			return l.MinPlayers <= p.PlayerCount &&
				(!m.UseLandmark || m.Landmark == "" || m.Landmark != l.Code)
		},
		a.toggler(catalog.KindLandmark),
	)
	return nil
}

func validateChooseDeck(a *advance) (ValidationCode, error) {
	a.deckPool = enabled(a.snap.available(catalog.KindDeck))
	if len(a.deckPool) == 0 {
		return ErrorNoDeck, nil
	}
	return ErrorNone, nil
}

func applyChooseDeck(a *advance) error {
	d, err := a.take(&a.deckPool)
	if err != nil {
		return err
	}
	a.snap.Parameters.Deck = d.Code
	return nil
}

func validateChooseLandmarks(a *advance) (ValidationCode, error) {
	a.landmarkPool = enabled(a.snap.available(catalog.KindLandmark))
	if len(a.landmarkPool) >= a.snap.Parameters.LandmarkCount {
		return ErrorNone, nil
	}
	if len(a.landmarkPool) == 0 {
		return ErrorNoLandmark, nil
	}
	return ErrorTooFewLandmark, nil
}

func applyChooseLandmarks(a *advance) error {
	p := &a.snap.Parameters
	p.Landmark1, p.Landmark2 = "", ""
	if p.LandmarkCount >= 1 {
		l, err := a.take(&a.landmarkPool)
		if err != nil {
			return err
		}
		p.Landmark1 = l.Code
	}
	if p.LandmarkCount >= 2 {
		l, err := a.take(&a.landmarkPool)
		if err != nil {
			return err
		}
		p.Landmark2 = l.Code
	}
	return nil
}

func skipsChooseLandmarks(a *advance) {
	switch count := a.snap.Parameters.LandmarkCount; {
	case count >= 2:
		a.snap.skipSteps(false, StepSetUpLandmark1, StepSetUpLandmark2)
	case count == 1:
		a.snap.skipSteps(false, StepSetUpLandmark1)
		a.snap.skipSteps(true, StepSetUpLandmark2)
	default:
		a.snap.skipSteps(true, StepSetUpLandmark1, StepSetUpLandmark2)
	}
}

// validateChooseHirelings builds the hireling draw pool. When only a few
// factions are spare, faction hirelings are sampled so the draw can never
// exclude more factions than the setup can lose.
func validateChooseHirelings(a *advance) (ValidationCode, error) {
	a.snap.Parameters.ExcludedFactions = nil
	if a.snap.Flow.SkippedSteps[StepSetUpHireling1] {
		return ErrorNone, nil
	}

	pool := a.snap.enabledIndependentHirelings()
	factionHirelings := enabled(a.snap.factionHirelings())
	factionCodes := a.snap.factionCodes()
	spare := len(factionCodes) - (a.snap.Parameters.PlayerCount + 1)

	if spare <= 3 {
		for spare > 0 && len(factionHirelings) > 0 {
			h, err := a.take(&factionHirelings)
			if err != nil {
				return ErrorNone, err
			}
			// multi-faction hirelings only cost the factions actually in play
			cost := 1
			if len(h.Factions) > 1 {
				cost = 0
				for _, code := range h.Factions {
					if slices.Contains(factionCodes, code) {
						cost++
					}
				}
			}
			if spare-cost >= 0 {
				pool = append(pool, h)
				spare -= cost
			}
		}
	} else {
		pool = append(pool, factionHirelings...)
	}

	a.hirelingPool = pool
	if len(pool) < 3 {
		return ErrorTooFewHireling, nil
	}
	return ErrorNone, nil
}

func applyChooseHirelings(a *advance) error {
	p := &a.snap.Parameters
	p.Hirelings = nil

	if !a.snap.Flow.SkippedSteps[StepSetUpHireling1] {
		for number := 1; number <= 3; number++ {
			h, err := a.take(&a.hirelingPool)
			if err != nil {
				return err
			}
			p.Hirelings = append(p.Hirelings, HirelingSlot{Code: h.Code, Limited: p.PlayerCount+number > 5})
			p.ExcludedFactions = append(p.ExcludedFactions, h.Factions...)
		}
	}
	return nil
}

// toggleFactionsForHirelings runs even when the hireling draw fails, so a
// failed attempt still releases factions excluded by an earlier draw.
func toggleFactionsForHirelings(a *advance) {
	p := &a.snap.Parameters
	skipped := a.snap.Flow.SkippedSteps

	// Hirelings exclude their factions. Insurgents are also out in a two
	// player game with neither hirelings nor bots.
	excluded := p.ExcludedFactions
	MassToggle(
		a.snap.available(catalog.KindFaction),
		func(f Component) bool {
			return !slices.Contains(excluded, f.Code) &&
				(p.PlayerCount > 2 || f.Militant || !skipped[StepSetUpHireling1] || !skipped[StepSetUpBots])
		},
		a.toggler(catalog.KindFaction),
	)
}

func validateChooseFactions(a *advance) (ValidationCode, error) {
	a.factionPool = a.snap.enabledMilitantFactions()
	a.insurgents = a.snap.enabledInsurgentFactions()
	a.vagabondPool = enabled(a.snap.available(catalog.KindVagabond))

	vagabondFactions := 0
	for _, f := range slices.Concat(a.factionPool, a.insurgents) {
		if f.Vagabond {
			vagabondFactions++
		}
	}

	switch {
	case len(a.factionPool) == 0:
		return ErrorNoMilitantFaction, nil
	case len(a.vagabondPool) < vagabondFactions:
		return ErrorTooFewVagabond, nil
	case len(a.factionPool)+len(a.insurgents) < a.snap.Parameters.PlayerCount+1:
		return ErrorTooFewFaction, nil
	}
	return ErrorNone, nil
}

func applyChooseFactions(a *advance) error {
	flow := &a.snap.Flow
	playerCount := a.snap.Parameters.PlayerCount
	flow.FactionPool = nil

	// one militant faction is guaranteed, the rest come from everything enabled
	if err := a.addToFactionPool(); err != nil {
		return err
	}
	a.factionPool = append(a.factionPool, a.insurgents...)
	for i := 0; i < playerCount; i++ {
		if err := a.addToFactionPool(); err != nil {
			return err
		}
	}

	// choosing starts from the bottom of player order
	flow.CurrentPlayerIndex = playerCount - 1
	flow.CurrentFactionIndex = NoIndex
	return nil
}

func (a *advance) addToFactionPool() error {
	f, err := a.take(&a.factionPool)
	if err != nil {
		return err
	}
	entry := FactionEntry{Faction: f.Code, Militant: f.Militant, Seat: NoIndex}
	if f.Vagabond {
		v, err := a.take(&a.vagabondPool)
		if err != nil {
			return err
		}
		entry.Vagabond = v.Code
	}
	a.snap.Flow.FactionPool = append(a.snap.Flow.FactionPool, entry)
	return nil
}

func validateSelectFaction(a *advance) (ValidationCode, error) {
	if a.snap.Flow.CurrentFactionIndex == NoIndex {
		return ErrorNoFaction, nil
	}
	return ErrorNone, nil
}

func applySelectFaction(a *advance) error {
	flow := &a.snap.Flow
	if flow.CurrentFactionIndex < 0 || flow.CurrentFactionIndex >= len(flow.FactionPool) {
		return fmt.Errorf("%w: faction index %d", ErrInvalidParameter, flow.CurrentFactionIndex)
	}
	entry := &flow.FactionPool[flow.CurrentFactionIndex]
	entry.Claimed = true
	entry.Seat = flow.CurrentPlayerIndex
	flow.CurrentFactionIndex = NoIndex

	if flow.CurrentPlayerIndex > 0 {
		flow.CurrentPlayerIndex--
		a.stay = true
		return nil
	}
	flow.CurrentPlayerIndex = NoIndex
	return nil
}
