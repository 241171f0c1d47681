// storage package persists the artifacts materialized by the driver runs. It
// is a prefixed key-value store with the following prefixes:
//   - 'r/' for runs, by run ID
//   - 'a/' for the latest artifacts of each target, by target name
//   - 'ra/' for the artifacts of each run, by run ID and target name
//
// Every value is CBOR encoded.
package storage

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	runPrefix          = []byte("r/")
	artifactsPrefix    = []byte("a/")
	runArtifactsPrefix = []byte("ra/")
)

// ErrNotFound is returned when the requested item is not in the storage.
var ErrNotFound = errors.New("not found")

// Storage wraps the database where the runs and their artifacts are stored.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}
