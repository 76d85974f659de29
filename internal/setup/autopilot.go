package setup

import (
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
)

// BlockedError reports a step that failed validation during AutoComplete
type BlockedError struct {
	Step Step
	Code ValidationCode
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("setup blocked at %s: %s", e.Step, e.Code)
}

// AutoComplete advances s until the final step, picking a random allowed
// faction for every seat. It stops with a *BlockedError on the first step that
// fails validation.
func (e *Engine) AutoComplete(s *State) error {
	// each seat may take one extra pass through selectFaction
	limit := len(stepNames) + len(s.Components[catalog.KindFaction]) + 1
	for guard := 0; s.Flow.CurrentStep != StepSetupEnd; guard++ {
		if guard > limit {
			return fmt.Errorf("setup did not finish after %d advances", guard)
		}
		if s.Flow.CurrentStep == StepSelectFaction && s.Flow.CurrentFactionIndex == NoIndex {
			if err := e.autoSelectFaction(s); err != nil {
				return err
			}
		}

		step := s.Flow.CurrentStep
		if err := e.Advance(s); err != nil {
			return err
		}
		if s.Parameters.ErrorMessage != ErrorNone {
			return &BlockedError{Step: step, Code: s.Parameters.ErrorMessage}
		}
	}
	return nil
}

func (e *Engine) autoSelectFaction(s *State) error {
	var candidates []int
	for i, entry := range s.Flow.FactionPool {
		if !entry.Claimed {
			candidates = append(candidates, i)
		}
	}
	for len(candidates) > 0 {
		index, err := random.TakeRandom(e.source, &candidates)
		if err != nil {
			return err
		}
		if err := e.SelectFaction(s, index); err != nil {
			return err
		}
		if s.Flow.CurrentFactionIndex == index {
			return nil
		}
	}
	return &BlockedError{Step: StepSelectFaction, Code: s.Parameters.ErrorMessage}
}
