package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// TargetsEndpoint lists the targets with stored artifacts
	TargetsEndpoint = "/targets"
	// TargetArtifactsEndpoint returns the latest artifacts of a target, and
	// TargetRawArtifactsEndpoint the same artifacts serialized as bytes.
	TargetURLParam             = "target"
	TargetArtifactsEndpoint    = "/targets/{" + TargetURLParam + "}/artifacts"
	TargetRawArtifactsEndpoint = "/targets/{" + TargetURLParam + "}/artifacts/raw"
	// RunsEndpoint lists the runs
	RunsEndpoint = "/runs"
	// RunEndpoint returns a run and RunArtifactsEndpoint the artifacts of a
	// target in that run.
	RunURLParam          = "runId"
	RunEndpoint          = "/runs/{" + RunURLParam + "}"
	RunArtifactsEndpoint = "/runs/{" + RunURLParam + "}/targets/{" + TargetURLParam + "}/artifacts"
)
