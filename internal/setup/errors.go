package setup

import "errors"

// ValidationCode names the reason a step cannot be completed. It is shown to
// the user until the blocking condition is fixed.
type ValidationCode string

const (
	ErrorNone              ValidationCode = ""
	ErrorNoMap             ValidationCode = "error.noMap"
	ErrorNoDeck            ValidationCode = "error.noDeck"
	ErrorNoLandmark        ValidationCode = "error.noLandmark"
	ErrorTooFewLandmark    ValidationCode = "error.tooFewLandmark"
	ErrorTooFewHireling    ValidationCode = "error.tooFewHireling"
	ErrorNoMilitantFaction ValidationCode = "error.noMilitantFaction"
	ErrorTooFewVagabond    ValidationCode = "error.tooFewVagabond"
	ErrorTooFewFaction     ValidationCode = "error.tooFewFaction"
	ErrorNoFaction         ValidationCode = "error.noFaction"
	ErrorMilitantRequired  ValidationCode = "error.militantRequired"
	ErrorLockedBase        ValidationCode = "error.lockedBase"
	ErrorLockedExpansion   ValidationCode = "error.lockedExpansion"
)

// Contract violations. These indicate a caller bug and abort the operation
// without touching state.
var (
	ErrNoHistory        = errors.New("no history to restore")
	ErrUnknownComponent = errors.New("unknown component")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrFactionTaken     = errors.New("faction already taken")
	ErrWrongStep        = errors.New("command not valid at current step")
	ErrUnknownCommand   = errors.New("unknown command")
)
