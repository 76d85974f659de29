package setup

import "fmt"

// Step is one stage of the setup walkthrough
type Step int

const (
	StepChooseExpansions Step = iota
	StepSeatPlayers
	StepChooseDeck
	StepChooseMap
	StepChooseLandmarks
	StepSetUpLandmark1
	StepSetUpLandmark2
	StepChooseHirelings
	StepSetUpHireling1
	StepSetUpHireling2
	StepSetUpHireling3
	StepPostHirelingSetup
	StepSetUpBots
	StepChooseFactions
	StepSelectFaction
	StepSetupEnd
)

var stepNames = [...]string{
	StepChooseExpansions:  "chooseExpansions",
	StepSeatPlayers:       "seatPlayers",
	StepChooseDeck:        "chooseDeck",
	StepChooseMap:         "chooseMap",
	StepChooseLandmarks:   "chooseLandmarks",
	StepSetUpLandmark1:    "setUpLandmark1",
	StepSetUpLandmark2:    "setUpLandmark2",
	StepChooseHirelings:   "chooseHirelings",
	StepSetUpHireling1:    "setUpHireling1",
	StepSetUpHireling2:    "setUpHireling2",
	StepSetUpHireling3:    "setUpHireling3",
	StepPostHirelingSetup: "postHirelingSetup",
	StepSetUpBots:         "setUpBots",
	StepChooseFactions:    "chooseFactions",
	StepSelectFaction:     "selectFaction",
	StepSetupEnd:          "setupEnd",
}

// Steps returns every step in walkthrough order
func Steps() []Step {
	steps := make([]Step, 0, len(stepNames))
	for s := StepChooseExpansions; s <= StepSetupEnd; s++ {
		steps = append(steps, s)
	}
	return steps
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep resolves a step name
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// MarshalText encodes the step by name so skip maps read naturally in JSON
func (s Step) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stepNames) {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

// UnmarshalText decodes a step name
func (s *Step) UnmarshalText(text []byte) error {
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

var (
	landmarkSetupSteps = []Step{StepSetUpLandmark1, StepSetUpLandmark2}
	landmarkSteps      = []Step{StepChooseLandmarks, StepSetUpLandmark1, StepSetUpLandmark2}
	hirelingSetupSteps = []Step{StepSetUpHireling1, StepSetUpHireling2, StepSetUpHireling3, StepPostHirelingSetup}
	hirelingSteps      = append([]Step{StepChooseHirelings}, hirelingSetupSteps...)
)
