// Package setup implements the setup walkthrough: the selection state store,
// the step flow with undo/redo, and the step advancement engine that performs
// each step's validation and randomized assignment.
package setup

import (
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
	"go.uber.org/zap"
)

// Engine applies commands to setup state. It holds no per-setup data, so one
// engine can serve many states as long as its random source is safe to share.
type Engine struct {
	catalog *catalog.Catalog
	source  random.Source
	locks   LockPolicy
	opts    StateOptions
	logger  *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLockPolicy replaces the default lock policy
func WithLockPolicy(policy LockPolicy) Option {
	return func(e *Engine) { e.locks = policy }
}

// WithStateOptions sets the parameters new states start with
func WithStateOptions(opts StateOptions) Option {
	return func(e *Engine) { e.opts = opts }
}

// NewEngine creates an engine over cat drawing randomness from source.
func NewEngine(cat *catalog.Catalog, source random.Source, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog: cat,
		source:  source,
		locks:   DefaultLocks{},
		opts:    DefaultStateOptions(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the registry the engine was built with
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// NewState returns a fresh setup at the first step
func (e *Engine) NewState() *State {
	return NewState(e.catalog, e.opts)
}

// Advance runs the current step's rule and, when it validates, moves the
// cursor to the next step that is not skipped. A failed validation leaves
// the cursor in place and records the reason in Parameters.ErrorMessage.
//
// A returned error means a contract violation; the state is left untouched.
func (e *Engine) Advance(s *State) error {
	work := s.Snapshot.Clone()
	step := work.Flow.CurrentStep
	a := &advance{snap: &work, source: e.source}

	code := ErrorNone
	increment := step != StepSetupEnd
	if rule, ok := stepRules[step]; ok {
		if rule.validate != nil {
			var err error
			if code, err = rule.validate(a); err != nil {
				return fmt.Errorf("%s: %w", step, err)
			}
		}
		if code == ErrorNone {
			if rule.apply != nil {
				if err := rule.apply(a); err != nil {
					return fmt.Errorf("%s: %w", step, err)
				}
			}
			if rule.computeSkips != nil {
				rule.computeSkips(a)
			}
		}
		if rule.finally != nil {
			rule.finally(a)
		}
	}
	if code != ErrorNone {
		increment = false
	}

	if work.Parameters.ErrorMessage != code {
		work.Parameters.ErrorMessage = code
	}

	if increment {
		s.PastSteps = append(s.PastSteps, s.Snapshot)
		s.FutureSteps = nil
		if !a.stay {
			work.Flow.CurrentStep = nextStep(work.Flow)
		}
	}
	s.Snapshot = work

	e.logger.Debug("advanced setup step",
		zap.Stringer("step", step),
		zap.Stringer("current_step", work.Flow.CurrentStep),
		zap.String("error_code", string(code)),
	)
	return nil
}

// nextStep finds the first step after the current one that is not skipped.
// The terminal step is never skipped.
func nextStep(flow Flow) Step {
	next := flow.CurrentStep + 1
	for next < StepSetupEnd && flow.SkippedSteps[next] {
		next++
	}
	return next
}

// Back restores the snapshot taken before the most recent advance.
func (e *Engine) Back(s *State) error {
	if len(s.PastSteps) == 0 {
		return ErrNoHistory
	}
	for {
		n := len(s.PastSteps)
		prev := s.PastSteps[n-1]
		s.PastSteps = s.PastSteps[:n-1]
		s.FutureSteps = append(s.FutureSteps, s.Snapshot)
		s.Snapshot = prev
		if !prev.Flow.SkippedSteps[prev.Flow.CurrentStep] || len(s.PastSteps) == 0 {
			break
		}
	}
	e.logger.Debug("moved setup back", zap.Stringer("current_step", s.Flow.CurrentStep))
	return nil
}

// Forward re-applies a snapshot undone by Back.
func (e *Engine) Forward(s *State) error {
	if len(s.FutureSteps) == 0 {
		return ErrNoHistory
	}
	for {
		n := len(s.FutureSteps)
		next := s.FutureSteps[n-1]
		s.FutureSteps = s.FutureSteps[:n-1]
		s.PastSteps = append(s.PastSteps, s.Snapshot)
		s.Snapshot = next
		if !next.Flow.SkippedSteps[next.Flow.CurrentStep] || len(s.FutureSteps) == 0 {
			break
		}
	}
	e.logger.Debug("moved setup forward", zap.Stringer("current_step", s.Flow.CurrentStep))
	return nil
}

// Toggle flips a component's enabled flag, or sets it when enabled is non-nil.
// Locked components are left alone and their lock reason becomes the error
// message.
func (e *Engine) Toggle(s *State, kind catalog.Kind, code string, enabled *bool) error {
	c := s.component(kind, code)
	if c == nil {
		return fmt.Errorf("%w: %s %q", ErrUnknownComponent, kind, code)
	}
	if reason := e.locks.LockedReason(&s.Snapshot, *c); reason != ErrorNone {
		s.Parameters.ErrorMessage = reason
		return nil
	}

	want := !c.Enabled
	if enabled != nil {
		want = *enabled
	}
	if want == c.Enabled {
		return nil
	}
	c.Enabled = want

	if kind == catalog.KindExpansion && !s.botsAvailable() {
		s.skipSteps(true, StepSetUpBots)
	}
	s.FutureSteps = nil
	return nil
}

// SelectFaction picks the faction pool entry at index for the seat currently
// choosing. The last seat to choose must take a militant faction if nobody
// has yet.
func (e *Engine) SelectFaction(s *State, index int) error {
	if s.Flow.CurrentStep != StepSelectFaction {
		return fmt.Errorf("%w: %s", ErrWrongStep, s.Flow.CurrentStep)
	}
	pool := s.Flow.FactionPool
	if index < 0 || index >= len(pool) {
		return fmt.Errorf("%w: faction index %d", ErrInvalidParameter, index)
	}
	entry := pool[index]
	if entry.Claimed {
		return fmt.Errorf("%w: %s", ErrFactionTaken, entry.Faction)
	}
	if s.Flow.CurrentPlayerIndex == 0 && !entry.Militant && !militantClaimed(pool) {
		s.Parameters.ErrorMessage = ErrorMilitantRequired
		return nil
	}

	s.Flow.CurrentFactionIndex = index
	s.Parameters.ErrorMessage = ErrorNone
	s.FutureSteps = nil
	return nil
}

func militantClaimed(pool []FactionEntry) bool {
	for _, entry := range pool {
		if entry.Claimed && entry.Militant {
			return true
		}
	}
	return false
}
