package setup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SnapshotChecksum is a deterministic fingerprint of a snapshot. Two snapshots
// with the same checksum restore to the same setup.
type SnapshotChecksum struct {
	Hash    string // SHA-256 of the canonical encoding
	Version int    // encoding version
}

// ComputeChecksum fingerprints the snapshot. encoding/json writes map keys in
// sorted order, which makes the encoding canonical.
func (s Snapshot) ComputeChecksum() (*SnapshotChecksum, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	sum := sha256.Sum256(data)
	return &SnapshotChecksum{
		Hash:    hex.EncodeToString(sum[:]),
		Version: 1,
	}, nil
}

// VerifyChecksum reports whether the snapshot matches expected
func (s Snapshot) VerifyChecksum(expected *SnapshotChecksum) (bool, error) {
	if expected == nil {
		return false, fmt.Errorf("expected checksum is nil")
	}
	actual, err := s.ComputeChecksum()
	if err != nil {
		return false, err
	}
	if actual.Version != expected.Version {
		return false, fmt.Errorf("checksum version mismatch: expected %d, got %d", expected.Version, actual.Version)
	}
	return actual.Hash == expected.Hash, nil
}
