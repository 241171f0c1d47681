package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vocdoni/proof-artifacts/storage"
)

// targets lists the targets with stored artifacts
// GET /targets
func (a *API) targets(w http.ResponseWriter, _ *http.Request) {
	targets, err := a.storage.Targets()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &TargetsResponse{Targets: targets})
}

func (a *API) latestArtifacts(w http.ResponseWriter, r *http.Request) (*storage.TargetArtifacts, bool) {
	target := chi.URLParam(r, TargetURLParam)
	ta, err := a.storage.Artifacts(target)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrArtifactsNotFound.Withf("target %s", target).Write(w)
			return nil, false
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return nil, false
	}
	return ta, true
}

// targetArtifacts returns the latest artifacts of a target
// GET /targets/{target}/artifacts
func (a *API) targetArtifacts(w http.ResponseWriter, r *http.Request) {
	if ta, ok := a.latestArtifacts(w, r); ok {
		httpWriteJSON(w, ta)
	}
}

// targetRawArtifacts returns the latest artifacts of a target as bytes
// GET /targets/{target}/artifacts/raw
func (a *API) targetRawArtifacts(w http.ResponseWriter, r *http.Request) {
	ta, ok := a.latestArtifacts(w, r)
	if !ok {
		return
	}
	httpWriteJSON(w, &RawArtifactsResponse{
		Target: ta.Target,
		Words:  len(ta.Artifacts.Serialize()),
		Bytes:  ta.Artifacts.Bytes(),
	})
}

// runs lists the runs, the oldest first
// GET /runs
func (a *API) runs(w http.ResponseWriter, _ *http.Request) {
	runs, err := a.storage.Runs()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &RunsResponse{Runs: runs})
}

func runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, RunURLParam))
	if err != nil {
		ErrMalformedRunID.WithErr(err).Write(w)
		return uuid.UUID{}, false
	}
	return id, true
}

// run returns a run
// GET /runs/{runId}
func (a *API) run(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}
	run, err := a.storage.Run(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrRunNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, run)
}

// runArtifacts returns the artifacts of a target in a run
// GET /runs/{runId}/targets/{target}/artifacts
func (a *API) runArtifacts(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, TargetURLParam)
	ta, err := a.storage.RunArtifacts(id, target)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrArtifactsNotFound.Withf("target %s in run %s", target, id).Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, ta)
}
