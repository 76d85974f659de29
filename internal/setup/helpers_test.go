package setup

import (
	"testing"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/MHostile/root-automated-setup/internal/setup/random"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestEngine builds an engine over doc, or the default catalog when doc is
// empty.
func newTestEngine(t *testing.T, doc string, source random.Source, opts ...Option) *Engine {
	t.Helper()

	var (
		cat *catalog.Catalog
		err error
	)
	if doc == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Parse([]byte(doc))
	}
	require.NoError(t, err)

	if source == nil {
		source = random.NewSeeded(1)
	}
	return NewEngine(cat, source, zaptest.NewLogger(t), opts...)
}

// advanceTo advances s until it presents step
func advanceTo(t *testing.T, e *Engine, s *State, step Step) {
	t.Helper()
	for i := 0; s.Flow.CurrentStep != step; i++ {
		require.Less(t, i, len(stepNames), "never reached %s", step)
		require.NoError(t, e.Advance(s))
		require.Equal(t, ErrorNone, s.Parameters.ErrorMessage, "blocked at %s", s.Flow.CurrentStep)
	}
}

func enable(t *testing.T, e *Engine, s *State, kind catalog.Kind, codes ...string) {
	t.Helper()
	on := true
	for _, code := range codes {
		require.NoError(t, e.Toggle(s, kind, code, &on))
		require.True(t, isEnabled(s, kind, code), "%s %s is locked", kind, code)
	}
}

func disable(t *testing.T, e *Engine, s *State, kind catalog.Kind, codes ...string) {
	t.Helper()
	off := false
	for _, code := range codes {
		require.NoError(t, e.Toggle(s, kind, code, &off))
		require.False(t, isEnabled(s, kind, code), "%s %s is locked", kind, code)
	}
}

func isEnabled(s *State, kind catalog.Kind, code string) bool {
	c := s.component(kind, code)
	return c != nil && c.Enabled
}

const fiveFactionCatalog = `
expansions:
  - {code: base, base: true}
factions:
  - {code: m1, expansion: base, militant: true}
  - {code: m2, expansion: base, militant: true}
  - {code: m3, expansion: base, militant: true}
  - {code: i1, expansion: base}
  - {code: i2, expansion: base}
maps:
  - {code: plains, expansion: base}
decks:
  - {code: standard, expansion: base}
`

const twoDeckCatalog = `
expansions:
  - {code: base, base: true}
  - {code: extra}
factions:
  - {code: m1, expansion: base, militant: true}
  - {code: i1, expansion: base}
  - {code: i2, expansion: base}
maps:
  - {code: plains, expansion: base}
  - {code: hills, expansion: base}
decks:
  - {code: standard, expansion: base}
  - {code: second, expansion: extra}
`

const landmarkCatalog = `
expansions:
  - {code: base, base: true}
factions:
  - {code: m1, expansion: base, militant: true}
  - {code: i1, expansion: base}
  - {code: i2, expansion: base}
  - {code: i3, expansion: base}
maps:
  - {code: plains, expansion: base}
decks:
  - {code: standard, expansion: base}
landmarks:
  - {code: tower, expansion: base, min_players: 2}
  - {code: ferry, expansion: base, min_players: 2}
`

const hirelingCatalog = `
expansions:
  - {code: base, base: true}
factions:
  - {code: m1, expansion: base, militant: true}
  - {code: m2, expansion: base, militant: true}
  - {code: i1, expansion: base}
  - {code: i2, expansion: base}
  - {code: i3, expansion: base}
  - {code: i4, expansion: base}
maps:
  - {code: plains, expansion: base}
decks:
  - {code: standard, expansion: base}
hirelings:
  - {code: h1, expansion: base, factions: [m1]}
  - {code: h2, expansion: base, factions: [m2]}
  - {code: h3, expansion: base, factions: [i1]}
  - {code: h4, expansion: base, factions: [i2]}
  - {code: h5, expansion: base, factions: [i3, i4]}
  - {code: free1, expansion: base}
  - {code: free2, expansion: base}
  - {code: free3, expansion: base}
`
