package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/types"
)

// TargetArtifacts is the artifact triple materialized for a target in a run.
type TargetArtifacts struct {
	Target      string             `json:"target" cbor:"0,keyasint"`
	RunID       uuid.UUID          `json:"runId" cbor:"1,keyasint"`
	Backend     string             `json:"backend" cbor:"2,keyasint"`
	ProgramHash types.HexBytes     `json:"programHash" cbor:"3,keyasint"`
	CreatedAt   time.Time          `json:"createdAt" cbor:"4,keyasint"`
	Artifacts   *backend.Artifacts `json:"artifacts" cbor:"5,keyasint"`
}

func runArtifactsKey(runID uuid.UUID, target string) []byte {
	return append(runID[:], []byte(target)...)
}

// SetArtifacts stores the artifacts of a target, both as the latest ones of
// the target and as the ones of their run.
func (s *Storage) SetArtifacts(ta *TargetArtifacts) error {
	if ta == nil || ta.Artifacts == nil {
		return fmt.Errorf("nil artifacts")
	}
	if ta.Target == "" {
		return fmt.Errorf("artifacts without target")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.setArtifacts(
		entry{prefix: artifactsPrefix, key: []byte(ta.Target), value: ta},
		entry{prefix: runArtifactsPrefix, key: runArtifactsKey(ta.RunID, ta.Target), value: ta},
	)
}

// Artifacts returns the latest artifacts of target. Returns ErrNotFound if the
// target has none.
func (s *Storage) Artifacts(target string) (*TargetArtifacts, error) {
	ta := &TargetArtifacts{}
	if err := s.getArtifact(artifactsPrefix, []byte(target), ta); err != nil {
		return nil, err
	}
	return ta, nil
}

// RunArtifacts returns the artifacts materialized for target in the run with
// the given ID. Returns ErrNotFound if there are none.
func (s *Storage) RunArtifacts(runID uuid.UUID, target string) (*TargetArtifacts, error) {
	ta := &TargetArtifacts{}
	if err := s.getArtifact(runArtifactsPrefix, runArtifactsKey(runID, target), ta); err != nil {
		return nil, err
	}
	return ta, nil
}

// Targets returns the sorted names of the targets with stored artifacts.
func (s *Storage) Targets() ([]string, error) {
	keys, err := s.listArtifacts(artifactsPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, string(k))
	}
	slices.Sort(names)
	return names, nil
}
