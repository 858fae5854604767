package model

// CheckStatusState represents the lifecycle state of a check suite as
// reported by the GitHub GraphQL API.
type CheckStatusState string

const (
	CheckStatusQueued     CheckStatusState = "QUEUED"
	CheckStatusInProgress CheckStatusState = "IN_PROGRESS"
	CheckStatusCompleted  CheckStatusState = "COMPLETED"
	CheckStatusWaiting    CheckStatusState = "WAITING"
	CheckStatusPending    CheckStatusState = "PENDING"
	CheckStatusRequested  CheckStatusState = "REQUESTED"
)

// CheckConclusionState represents the terminal outcome of a completed check suite.
type CheckConclusionState string

const (
	CheckConclusionSuccess        CheckConclusionState = "SUCCESS"
	CheckConclusionFailure        CheckConclusionState = "FAILURE"
	CheckConclusionCancelled      CheckConclusionState = "CANCELLED" //nolint:misspell // GitHub API spelling
	CheckConclusionSkipped        CheckConclusionState = "SKIPPED"
	CheckConclusionStartupFailure CheckConclusionState = "STARTUP_FAILURE"
	CheckConclusionTimedOut       CheckConclusionState = "TIMED_OUT"
	CheckConclusionNeutral        CheckConclusionState = "NEUTRAL"
	CheckConclusionActionRequired CheckConclusionState = "ACTION_REQUIRED"
	CheckConclusionStale          CheckConclusionState = "STALE"
)

// IsFailing reports whether the conclusion blocks the gate.
// Skipped, neutral and success are all acceptable outcomes.
func (c CheckConclusionState) IsFailing() bool {
	switch c {
	case CheckConclusionFailure, CheckConclusionCancelled, CheckConclusionStartupFailure, CheckConclusionTimedOut:
		return true
	default:
		return false
	}
}

// GitObjectType is the GraphQL __typename of a git object.
type GitObjectType string

const (
	GitObjectCommit GitObjectType = "Commit"
	GitObjectBlob   GitObjectType = "Blob"
	GitObjectTree   GitObjectType = "Tree"
	GitObjectTag    GitObjectType = "Tag"
)
