package setup

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// ReplayExt is the file extension of saved replays
const ReplayExt = ".replay"

const replayFormat = 2

// Replay is the recorded history of one setup session, oldest state first.
type Replay struct {
	SessionID string
	Started   time.Time
	States    []Snapshot
}

// Append records a copy of snap
func (r *Replay) Append(snap Snapshot) {
	r.States = append(r.States, snap.Clone())
}

// replayFile is the on-disk layout: a single gob value inside a gzip stream
type replayFile struct {
	Format int
	Replay Replay
}

// WriteReplay encodes r to w
func WriteReplay(w io.Writer, r *Replay) error {
	zw := gzip.NewWriter(w)
	if err := gob.NewEncoder(zw).Encode(replayFile{Format: replayFormat, Replay: *r}); err != nil {
		zw.Close()
		return fmt.Errorf("encode replay: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush replay: %w", err)
	}
	return nil
}

// ReadReplay decodes a replay written by WriteReplay
func ReadReplay(rd io.Reader) (*Replay, error) {
	zr, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer zr.Close()

	var f replayFile
	if err := gob.NewDecoder(zr).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	if f.Format != replayFormat {
		return nil, fmt.Errorf("unsupported replay format %d", f.Format)
	}
	return &f.Replay, nil
}

// LoadReplay reads a replay file
func LoadReplay(path string) (*Replay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer file.Close()

	r, err := ReadReplay(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ReplayRecorder keeps a replay for every session being recorded and writes
// each one to <dir>/<session id>.replay when the session finishes.
type ReplayRecorder struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	active map[string]*Replay
}

// NewReplayRecorder creates a recorder writing into dir
func NewReplayRecorder(logger *zap.Logger, dir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		dir:    dir,
		logger: logger,
		active: make(map[string]*Replay),
	}
}

// Start opens a replay for the session with first as its initial state,
// replacing any replay already open for it.
func (rr *ReplayRecorder) Start(sessionID string, first Snapshot) {
	r := &Replay{SessionID: sessionID, Started: time.Now()}
	r.Append(first)

	rr.mu.Lock()
	rr.active[sessionID] = r
	rr.mu.Unlock()
}

// Record appends snap to the session's open replay. Sessions without one are
// ignored.
func (rr *ReplayRecorder) Record(sessionID string, snap Snapshot) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if r, ok := rr.active[sessionID]; ok {
		r.Append(snap)
	}
}

// Recording reports whether a replay is open for the session
func (rr *ReplayRecorder) Recording(sessionID string) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	_, ok := rr.active[sessionID]
	return ok
}

// Finish closes the session's replay and writes it to disk, returning the
// file name. The file is written under a temporary name and renamed into
// place.
func (rr *ReplayRecorder) Finish(sessionID string) (string, error) {
	rr.mu.Lock()
	r, ok := rr.active[sessionID]
	delete(rr.active, sessionID)
	rr.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no replay open for session %s", sessionID)
	}

	if err := os.MkdirAll(rr.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create replay directory: %w", err)
	}
	tmp, err := os.CreateTemp(rr.dir, sessionID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create replay file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteReplay(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write replay: %w", err)
	}
	path := filepath.Join(rr.dir, sessionID+ReplayExt)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store replay: %w", err)
	}

	rr.logger.Info("replay saved",
		zap.String("session_id", sessionID),
		zap.Int("states", len(r.States)),
		zap.String("path", path),
	)
	return path, nil
}

// Discard drops the session's replay without writing it
func (rr *ReplayRecorder) Discard(sessionID string) {
	rr.mu.Lock()
	delete(rr.active, sessionID)
	rr.mu.Unlock()
}
