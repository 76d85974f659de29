package setup

import "github.com/MHostile/root-automated-setup/internal/catalog"

// LockPolicy decides whether a component may currently be toggled by the
// user. A non-empty reason rejects the toggle and is shown as the error.
type LockPolicy interface {
	LockedReason(s *Snapshot, c Component) ValidationCode
}

// LockPolicyFunc adapts a function to LockPolicy
type LockPolicyFunc func(s *Snapshot, c Component) ValidationCode

// LockedReason implements LockPolicy
func (f LockPolicyFunc) LockedReason(s *Snapshot, c Component) ValidationCode {
	return f(s, c)
}

// DefaultLocks keeps the base game in play and freezes components whose
// expansion is not enabled.
type DefaultLocks struct{}

// LockedReason implements LockPolicy
func (DefaultLocks) LockedReason(s *Snapshot, c Component) ValidationCode {
	if c.Kind == catalog.KindExpansion {
		if c.Base {
			return ErrorLockedBase
		}
		return ErrorNone
	}
	if !s.expansionEnabled(c.Expansion) {
		return ErrorLockedExpansion
	}
	return ErrorNone
}
