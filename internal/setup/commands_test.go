package setup

import (
	"testing"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownCommand struct{}

func (unknownCommand) commandName() string { return "shuffle" }

func TestApply(t *testing.T) {
	e := newTestEngine(t, "", nil)
	s := e.NewState()

	off := false
	require.NoError(t, e.Apply(s, ToggleCommand{Kind: catalog.KindMap, Code: "winter", Enabled: &off}))
	assert.False(t, isEnabled(s, catalog.KindMap, "winter"))

	require.NoError(t, e.Apply(s, SetParameterCommand{Name: ParamPlayerCount, Value: float64(2)}))
	assert.Equal(t, 2, s.Parameters.PlayerCount)

	require.NoError(t, e.Apply(s, AdvanceCommand{}))
	assert.Equal(t, StepSeatPlayers, s.Flow.CurrentStep)

	require.NoError(t, e.Apply(s, BackCommand{}))
	assert.Equal(t, StepChooseExpansions, s.Flow.CurrentStep)

	require.NoError(t, e.Apply(s, ForwardCommand{}))
	assert.Equal(t, StepSeatPlayers, s.Flow.CurrentStep)

	assert.ErrorIs(t, e.Apply(s, SelectFactionCommand{Index: 0}), ErrWrongStep)
	assert.ErrorIs(t, e.Apply(s, unknownCommand{}), ErrUnknownCommand)

	require.NoError(t, e.Apply(s, ResetCommand{}))
	assert.Equal(t, e.NewState(), s)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "toggle", CommandName(ToggleCommand{}))
	assert.Equal(t, "set", CommandName(SetParameterCommand{}))
	assert.Equal(t, "advance", CommandName(AdvanceCommand{}))
	assert.Equal(t, "back", CommandName(BackCommand{}))
	assert.Equal(t, "forward", CommandName(ForwardCommand{}))
	assert.Equal(t, "select_faction", CommandName(SelectFactionCommand{}))
	assert.Equal(t, "reset", CommandName(ResetCommand{}))
}

func TestEditsDropRedoHistory(t *testing.T) {
	e := newTestEngine(t, "", nil)
	s := e.NewState()
	require.NoError(t, e.Advance(s))

	require.NoError(t, e.Back(s))
	require.NotEmpty(t, s.FutureSteps)
	require.NoError(t, e.Toggle(s, catalog.KindMap, "winter", nil))
	assert.Empty(t, s.FutureSteps)
	assert.ErrorIs(t, e.Forward(s), ErrNoHistory)

	require.NoError(t, e.Advance(s))
	require.NoError(t, e.Back(s))
	require.NotEmpty(t, s.FutureSteps)
	require.NoError(t, e.SetParameter(s, ParamLandmarkCount, 0))
	assert.Empty(t, s.FutureSteps)
}
