package api

import (
	"github.com/vocdoni/proof-artifacts/storage"
	"github.com/vocdoni/proof-artifacts/types"
)

// TargetsResponse is the response of the targets endpoint.
type TargetsResponse struct {
	Targets []string `json:"targets"`
}

// RunsResponse is the response of the runs endpoint.
type RunsResponse struct {
	Runs []*storage.Run `json:"runs"`
}

// RawArtifactsResponse holds the artifact triple serialized as consecutive
// 32 byte words, in the order proof as fields, vk hash, vk as fields.
type RawArtifactsResponse struct {
	Target string         `json:"target"`
	Words  int            `json:"words"`
	Bytes  types.HexBytes `json:"bytes"`
}
