package setup

import (
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/spf13/cast"
)

// Command is a user intent applied through Engine.Apply
type Command interface {
	commandName() string
}

// ToggleCommand flips or sets a single component's enabled flag
type ToggleCommand struct {
	Kind    catalog.Kind
	Code    string
	Enabled *bool
}

// SetParameterCommand changes a scalar setup parameter
type SetParameterCommand struct {
	Name  Parameter
	Value any
}

// AdvanceCommand completes the current step
type AdvanceCommand struct{}

// BackCommand undoes the most recent advance
type BackCommand struct{}

// ForwardCommand redoes an undone advance
type ForwardCommand struct{}

// SelectFactionCommand picks a faction pool entry for the seat choosing now
type SelectFactionCommand struct {
	Index int
}

// ResetCommand discards the setup and starts over
type ResetCommand struct{}

func (ToggleCommand) commandName() string        { return "toggle" }
func (SetParameterCommand) commandName() string  { return "set" }
func (AdvanceCommand) commandName() string       { return "advance" }
func (BackCommand) commandName() string          { return "back" }
func (ForwardCommand) commandName() string       { return "forward" }
func (SelectFactionCommand) commandName() string { return "select_faction" }
func (ResetCommand) commandName() string         { return "reset" }

// CommandName returns the wire name of cmd
func CommandName(cmd Command) string {
	return cmd.commandName()
}

// Apply dispatches cmd against s.
func (e *Engine) Apply(s *State, cmd Command) error {
	switch c := cmd.(type) {
	case ToggleCommand:
		return e.Toggle(s, c.Kind, c.Code, c.Enabled)
	case SetParameterCommand:
		return e.SetParameter(s, c.Name, c.Value)
	case AdvanceCommand:
		return e.Advance(s)
	case BackCommand:
		return e.Back(s)
	case ForwardCommand:
		return e.Forward(s)
	case SelectFactionCommand:
		return e.SelectFaction(s, c.Index)
	case ResetCommand:
		*s = *e.NewState()
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// Parameter names a scalar setup parameter
type Parameter string

const (
	ParamPlayerCount      Parameter = "playerCount"
	ParamLandmarkCount    Parameter = "landmarkCount"
	ParamFixedFirstPlayer Parameter = "fixedFirstPlayer"
	ParamUseHirelings     Parameter = "useHirelings"
	ParamUseBots          Parameter = "useBots"
)

// SetParameter validates and stores a scalar parameter. Values decoded from
// JSON (float64, string) are accepted.
func (e *Engine) SetParameter(s *State, name Parameter, value any) error {
	switch name {
	case ParamPlayerCount:
		n, err := cast.ToIntE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
		}
		lo, hi := s.PlayerCountRange()
		if n < lo || n > hi {
			return fmt.Errorf("%w: player count %d outside [%d, %d]", ErrInvalidParameter, n, lo, hi)
		}
		s.Parameters.PlayerCount = n

	case ParamLandmarkCount:
		n, err := cast.ToIntE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
		}
		if n < 0 || n > 2 {
			return fmt.Errorf("%w: landmark count %d outside [0, 2]", ErrInvalidParameter, n)
		}
		s.Parameters.LandmarkCount = n

	case ParamFixedFirstPlayer:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
		}
		s.Parameters.FixedFirstPlayer = b

	case ParamUseHirelings:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
		}
		s.skipSteps(!b, hirelingSetupSteps...)

	case ParamUseBots:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, name, err)
		}
		if b && !s.botsAvailable() {
			return fmt.Errorf("%w: no enabled expansion provides bots", ErrInvalidParameter)
		}
		s.skipSteps(!b, StepSetUpBots)

	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}

	s.FutureSteps = nil
	return nil
}
