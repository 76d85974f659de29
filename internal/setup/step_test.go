package setup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNames(t *testing.T) {
	steps := Steps()
	require.Len(t, steps, len(stepNames))
	assert.Equal(t, StepChooseExpansions, steps[0])
	assert.Equal(t, StepSetupEnd, steps[len(steps)-1])

	for _, step := range steps {
		parsed, err := ParseStep(step.String())
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
	}

	_, err := ParseStep("shuffle")
	assert.Error(t, err)
	assert.Equal(t, "Step(99)", Step(99).String())
}

func TestStepJSON(t *testing.T) {
	flow := Flow{
		CurrentStep:  StepChooseMap,
		SkippedSteps: map[Step]bool{StepSetUpBots: true},
	}

	data, err := json.Marshal(flow)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"current_step":"chooseMap"`)
	assert.Contains(t, string(data), `"setUpBots":true`)

	var decoded Flow
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, flow.CurrentStep, decoded.CurrentStep)
	assert.Equal(t, flow.SkippedSteps, decoded.SkippedSteps)

	assert.Error(t, json.Unmarshal([]byte(`{"current_step":"nowhere"}`), &decoded))
}
