package setup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func recordedSetup(t *testing.T) []Snapshot {
	t.Helper()
	e := newTestEngine(t, "", nil)
	s := e.NewState()
	snaps := []Snapshot{s.Snapshot.Clone()}
	for s.Flow.CurrentStep != StepChooseFactions {
		require.NoError(t, e.Advance(s))
		snaps = append(snaps, s.Snapshot.Clone())
	}
	return snaps
}

func TestReplayAppendCopies(t *testing.T) {
	var r Replay
	snap := recordedSetup(t)[0]
	r.Append(snap)

	snap.Flow.SkippedSteps[StepChooseMap] = true
	snap.Parameters.PlayerCount = 1
	require.Len(t, r.States, 1)
	assert.False(t, r.States[0].Flow.SkippedSteps[StepChooseMap])
	assert.Equal(t, 4, r.States[0].Parameters.PlayerCount)
}

func TestWriteAndReadReplay(t *testing.T) {
	snaps := recordedSetup(t)
	r := &Replay{SessionID: "session-1"}
	for _, snap := range snaps {
		r.Append(snap)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReplay(&buf, r))

	loaded, err := ReadReplay(&buf)
	require.NoError(t, err)
	assert.Equal(t, "session-1", loaded.SessionID)
	require.Len(t, loaded.States, len(snaps))
	for i, want := range snaps {
		got := loaded.States[i]
		assert.Equal(t, want.Flow.CurrentStep, got.Flow.CurrentStep)
		assert.Equal(t, want.Flow.SkippedSteps, got.Flow.SkippedSteps)
		assert.Equal(t, want.Parameters.Map, got.Parameters.Map)
		assert.Equal(t, want.Parameters.PlayerCount, got.Parameters.PlayerCount)
		assert.Equal(t, want.Components, got.Components)
	}
}

func TestLoadReplayRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken"+ReplayExt)
	require.NoError(t, os.WriteFile(path, []byte("not a replay"), 0o600))

	_, err := LoadReplay(path)
	assert.Error(t, err)

	_, err = LoadReplay(filepath.Join(dir, "missing"+ReplayExt))
	assert.Error(t, err)
}

func TestReplayRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	snaps := recordedSetup(t)

	// nothing is recorded before Start
	recorder.Record("session-1", snaps[0])
	assert.False(t, recorder.Recording("session-1"))

	recorder.Start("session-1", snaps[0])
	assert.True(t, recorder.Recording("session-1"))
	recorder.Record("session-1", snaps[1])
	recorder.Record("session-1", snaps[2])

	path, err := recorder.Finish("session-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session-1"+ReplayExt), path)
	assert.False(t, recorder.Recording("session-1"))

	loaded, err := LoadReplay(path)
	require.NoError(t, err)
	require.Len(t, loaded.States, 3)
	assert.Equal(t, StepChooseExpansions, loaded.States[0].Flow.CurrentStep)
	assert.False(t, loaded.Started.IsZero())

	// no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = recorder.Finish("session-1")
	assert.Error(t, err)

	recorder.Start("session-2", snaps[0])
	recorder.Discard("session-2")
	assert.False(t, recorder.Recording("session-2"))
	_, err = recorder.Finish("session-2")
	assert.Error(t, err)
}
