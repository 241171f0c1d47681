package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Run is the summary of a driver run.
type Run struct {
	ID        uuid.UUID `json:"id" cbor:"0,keyasint"`
	Workspace string    `json:"workspace" cbor:"1,keyasint"`
	Backend   string    `json:"backend" cbor:"2,keyasint"`
	StartedAt time.Time `json:"startedAt" cbor:"3,keyasint"`
	// Targets are the targets of the run in workspace order, Failed the
	// ones that did not produce artifacts.
	Targets []string `json:"targets" cbor:"4,keyasint"`
	Failed  []string `json:"failed,omitempty" cbor:"5,keyasint,omitempty"`
}

// SetRun stores the summary of a run.
func (s *Storage) SetRun(r *Run) error {
	if r == nil {
		return fmt.Errorf("nil run")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.setArtifacts(entry{prefix: runPrefix, key: r.ID[:], value: r})
}

// Run returns the run with the given ID, or ErrNotFound.
func (s *Storage) Run(id uuid.UUID) (*Run, error) {
	r := &Run{}
	if err := s.getArtifact(runPrefix, id[:], r); err != nil {
		return nil, err
	}
	return r, nil
}

// Runs returns every stored run, the oldest first.
func (s *Storage) Runs() ([]*Run, error) {
	keys, err := s.listArtifacts(runPrefix)
	if err != nil {
		return nil, err
	}
	runs := make([]*Run, 0, len(keys))
	for _, k := range keys {
		id, err := uuid.FromBytes(k)
		if err != nil {
			return nil, fmt.Errorf("invalid run key %x: %w", k, err)
		}
		r, err := s.Run(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	slices.SortStableFunc(runs, func(a, b *Run) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return runs, nil
}
