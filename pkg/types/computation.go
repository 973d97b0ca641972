package types

// Computation states.
const (
	ComputationInitializing = "initializing"
	ComputationRunning      = "running"
	ComputationFinalizing   = "finalizing"
	ComputationCompleted    = "completed"
	ComputationFailed       = "failed"
)

// Computation end statuses.
const (
	EndStatusStopped   = "stopped"
	EndStatusFailed    = "failed"
	EndStatusSucceeded = "succeeded"
)

// Computation is one run of a capsule or pipeline.
type Computation struct {
	ID               string                 `json:"id"`
	Created          int64                  `json:"created"`
	Name             string                 `json:"name"`
	RunTime          int64                  `json:"run_time"`
	State            string                 `json:"state"`
	CloudWorkstation *bool                  `json:"cloud_workstation,omitempty"`
	DataAssets       []ComputationDataAsset `json:"data_assets,omitempty"`
	EndStatus        *string                `json:"end_status,omitempty"`
	ExitCode         *int                   `json:"exit_code,omitempty"`
	HasResults       *bool                  `json:"has_results,omitempty"`
	Parameters       []Param                `json:"parameters,omitempty"`
	NextflowProfile  *string                `json:"nextflow_profile,omitempty"`
}

// Done reports whether the computation reached a terminal state.
func (c Computation) Done() bool {
	return c.State == ComputationCompleted || c.State == ComputationFailed
}

// ComputationDataAsset is a data asset mounted for a computation.
type ComputationDataAsset struct {
	ID    *string `json:"id,omitempty"`
	Mount *string `json:"mount,omitempty"`
}

// Param is a parameter value passed to a computation.
type Param struct {
	Name      *string `json:"name,omitempty"`
	ParamName *string `json:"param_name,omitempty"`
	Value     *string `json:"value,omitempty"`
}

// DataAssetsRunParam mounts a data asset for a run.
type DataAssetsRunParam struct {
	ID    string `json:"id"`
	Mount string `json:"mount"`
}

// NamedRunParam sets a named parameter for a run.
type NamedRunParam struct {
	ParamName string `json:"param_name"`
	Value     string `json:"value"`
}

// RunParams starts a computation for a capsule or pipeline.
type RunParams struct {
	CapsuleID       *string              `json:"capsule_id,omitempty"`
	PipelineID      *string              `json:"pipeline_id,omitempty"`
	Version         *int                 `json:"version,omitempty"`
	ResumeRunID     *string              `json:"resume_run_id,omitempty"`
	DataAssets      []DataAssetsRunParam `json:"data_assets,omitempty"`
	Parameters      []string             `json:"parameters,omitempty"`
	NamedParameters []NamedRunParam      `json:"named_parameters,omitempty"`
}

// RunResult pairs a finished computation with its result listing.
type RunResult struct {
	Computation Computation `json:"computation"`
	Results     *Folder     `json:"results,omitempty"`
}

// ComputationList wraps a capsule's computations.
type ComputationList struct {
	Computations []Computation `json:"computations"`
}
