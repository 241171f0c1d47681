package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/vocdoni/proof-artifacts/api"
	"github.com/vocdoni/proof-artifacts/storage"
)

// get requests the endpoint and decodes the JSON response into out. Error
// responses are returned as api.Error.
func (c *HTTPclient) get(out any, urlPath ...string) error {
	data, status, err := c.Request(nil, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		apiErr := api.Error{HTTPstatus: status}
		if err := json.Unmarshal(data, &apiErr); err != nil {
			return fmt.Errorf("%s: %d (%s)", errCodeNot200, status, data)
		}
		return apiErr
	}
	return json.Unmarshal(data, out)
}

// Targets returns the names of the targets with stored artifacts.
func (c *HTTPclient) Targets() ([]string, error) {
	resp := &api.TargetsResponse{}
	if err := c.get(resp, api.TargetsEndpoint); err != nil {
		return nil, err
	}
	return resp.Targets, nil
}

// Artifacts returns the latest artifacts of target.
func (c *HTTPclient) Artifacts(target string) (*storage.TargetArtifacts, error) {
	ta := &storage.TargetArtifacts{}
	if err := c.get(ta, "targets", target, "artifacts"); err != nil {
		return nil, err
	}
	return ta, nil
}

// RawArtifacts returns the latest artifacts of target serialized as bytes.
func (c *HTTPclient) RawArtifacts(target string) (*api.RawArtifactsResponse, error) {
	raw := &api.RawArtifactsResponse{}
	if err := c.get(raw, "targets", target, "artifacts", "raw"); err != nil {
		return nil, err
	}
	return raw, nil
}

// Run returns the run with the given ID.
func (c *HTTPclient) Run(id uuid.UUID) (*storage.Run, error) {
	run := &storage.Run{}
	if err := c.get(run, "runs", id.String()); err != nil {
		return nil, err
	}
	return run, nil
}

// Runs returns the stored runs, oldest first.
func (c *HTTPclient) Runs() ([]*storage.Run, error) {
	resp := &api.RunsResponse{}
	if err := c.get(resp, api.RunsEndpoint); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// RunArtifacts returns the artifacts of target produced by the run id.
func (c *HTTPclient) RunArtifacts(id uuid.UUID, target string) (*storage.TargetArtifacts, error) {
	ta := &storage.TargetArtifacts{}
	if err := c.get(ta, "runs", id.String(), "targets", target, "artifacts"); err != nil {
		return nil, err
	}
	return ta, nil
}
