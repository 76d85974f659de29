package setup

import (
	"encoding/json"
	"testing"

	"github.com/MHostile/root-automated-setup/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestView(t *testing.T) {
	e := newTestEngine(t, "", nil)
	s := e.NewState()
	v := e.View(s, language.English)

	assert.Equal(t, StepChooseExpansions, v.CurrentStep)
	assert.False(t, v.Skipped)
	assert.Equal(t, 2, v.MinPlayers)
	assert.Equal(t, 3, v.MaxPlayers)
	assert.False(t, v.UseBots)
	assert.False(t, v.UseHirelings)
	assert.Contains(t, v.SkippedSteps, StepSetUpBots)
	assert.Empty(t, v.PastSteps)

	expansions := v.Components[catalog.KindExpansion]
	require.NotEmpty(t, expansions)
	assert.Equal(t, "base", expansions[0].Code)
	assert.Equal(t, ErrorLockedBase, expansions[0].Locked)
	assert.Equal(t, "clockwork", expansions[1].Code)
	assert.Equal(t, "exilesDeck", expansions[2].Code)

	for _, f := range v.Components[catalog.KindFaction] {
		switch f.Code {
		case "lizards":
			assert.False(t, f.Available)
			assert.Equal(t, ErrorLockedExpansion, f.Locked)
		case "marquise":
			assert.True(t, f.Available)
			assert.Equal(t, ErrorNone, f.Locked)
		}
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"current_step":"chooseExpansions"`)
}

func TestViewHistory(t *testing.T) {
	e := newTestEngine(t, "", nil)
	s := e.NewState()
	advanceTo(t, e, s, StepChooseMap)
	require.NoError(t, e.Back(s))

	v := e.View(s, language.English)
	assert.Equal(t, StepSeatPlayers, v.CurrentStep)
	assert.Equal(t, []Step{StepChooseExpansions}, v.PastSteps)
	assert.Equal(t, []Step{StepChooseMap}, v.FutureSteps)

	// the view is a copy
	v.Parameters.ExcludedFactions = append(v.Parameters.ExcludedFactions, "marquise")
	assert.Empty(t, s.Parameters.ExcludedFactions)
}
