package storage

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/proof-artifacts/backend"
	"github.com/vocdoni/proof-artifacts/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func testArtifacts(seed int64) *backend.Artifacts {
	return &backend.Artifacts{
		ProofAsFields: []*types.BigInt{types.NewInt(seed), types.NewInt(seed + 1)},
		VKHash:        types.NewInt(seed * 100),
		VKAsFields:    []*types.BigInt{types.NewInt(seed + 2)},
	}
}

func TestArtifacts(t *testing.T) {
	c := qt.New(t)
	stg := New(metadb.NewTest(t))

	_, err := stg.Artifacts("a")
	c.Assert(err, qt.Equals, ErrNotFound)

	first, second := uuid.New(), uuid.New()
	c.Assert(stg.SetArtifacts(&TargetArtifacts{
		Target: "a", RunID: first, Backend: "gnark", Artifacts: testArtifacts(1),
	}), qt.IsNil)
	c.Assert(stg.SetArtifacts(&TargetArtifacts{
		Target: "b", RunID: first, Backend: "gnark", Artifacts: testArtifacts(2),
	}), qt.IsNil)
	c.Assert(stg.SetArtifacts(&TargetArtifacts{
		Target: "a", RunID: second, Backend: "gnark", ProgramHash: types.HexBytes{1, 2}, Artifacts: testArtifacts(3),
	}), qt.IsNil)

	latest, err := stg.Artifacts("a")
	c.Assert(err, qt.IsNil)
	c.Assert(latest.RunID, qt.Equals, second)
	c.Assert(latest.ProgramHash, qt.DeepEquals, types.HexBytes{1, 2})
	c.Assert(latest.Artifacts.Equal(testArtifacts(3)), qt.IsTrue)

	old, err := stg.RunArtifacts(first, "a")
	c.Assert(err, qt.IsNil)
	c.Assert(old.Artifacts.Equal(testArtifacts(1)), qt.IsTrue)

	_, err = stg.RunArtifacts(second, "b")
	c.Assert(err, qt.Equals, ErrNotFound)

	targets, err := stg.Targets()
	c.Assert(err, qt.IsNil)
	c.Assert(targets, qt.DeepEquals, []string{"a", "b"})

	c.Assert(stg.SetArtifacts(&TargetArtifacts{Target: "c"}), qt.ErrorMatches, "nil artifacts")
}

func TestRuns(t *testing.T) {
	c := qt.New(t)
	stg := New(memdb.New())

	_, err := stg.Run(uuid.New())
	c.Assert(err, qt.Equals, ErrNotFound)

	now := time.Now()
	later := &Run{ID: uuid.New(), Workspace: "/ws", Backend: "gnark", StartedAt: now.Add(time.Minute), Targets: []string{"a"}}
	earlier := &Run{ID: uuid.New(), Workspace: "/ws", Backend: "gnark", StartedAt: now, Targets: []string{"a", "b"}, Failed: []string{"b"}}
	c.Assert(stg.SetRun(later), qt.IsNil)
	c.Assert(stg.SetRun(earlier), qt.IsNil)

	r, err := stg.Run(earlier.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(r.Targets, qt.DeepEquals, []string{"a", "b"})
	c.Assert(r.Failed, qt.DeepEquals, []string{"b"})
	c.Assert(r.StartedAt.Unix(), qt.Equals, now.Unix())

	runs, err := stg.Runs()
	c.Assert(err, qt.IsNil)
	c.Assert(runs, qt.HasLen, 2)
	c.Assert(runs[0].ID, qt.Equals, earlier.ID)
	c.Assert(runs[1].ID, qt.Equals, later.ID)
}
