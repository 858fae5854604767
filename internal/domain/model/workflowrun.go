package model

import (
	"errors"
	"time"
)

// GitHubActionsAppID identifies the GitHub Actions app; check suites are
// filtered to those it created.
const GitHubActionsAppID int64 = 15368

// ErrContractViolation marks a response from the provider that does not have
// the shape its schema guarantees. It is never retried.
var ErrContractViolation = errors.New("contract violation")

// WorkflowRun is a normalized check suite that is backed by a workflow run.
type WorkflowRun struct {
	Status       CheckStatusState
	Conclusion   *CheckConclusionState // nil until Status is COMPLETED.
	Event        string                // Trigger event, e.g. "pull_request".
	URL          string
	WorkflowName string
	CreatedAt    time.Time
	DatabaseID   int64
}

// IsCompleted reports whether the run reached a terminal state.
func (r WorkflowRun) IsCompleted() bool {
	return r.Status == CheckStatusCompleted
}

// IsFailing reports whether the run concluded with a failing conclusion.
func (r WorkflowRun) IsFailing() bool {
	return r.Conclusion != nil && r.Conclusion.IsFailing()
}

// RollupOptions configures which workflow runs take part in a rollup.
type RollupOptions struct {
	SelfWorkflowName     string   // Always excluded to avoid waiting on ourselves.
	FilterWorkflowEvents []string // Empty means any event.
	ExcludeWorkflowNames []string // Glob patterns.
	FilterWorkflowNames  []string // Glob patterns; empty means any name.
	FailFast             bool
	LatestRunsOnly       bool // Keep only the newest run per workflow name and event.
}

// Rollup is the aggregate of the filtered workflow runs of one poll cycle.
// A nil Status or Conclusion means the verdict is still pending.
type Rollup struct {
	Status       *CheckStatusState
	Conclusion   *CheckConclusionState
	WorkflowRuns []WorkflowRun
}

// IsCompleted reports whether every workflow run in the rollup completed.
func (r Rollup) IsCompleted() bool {
	return r.Status != nil && *r.Status == CheckStatusCompleted
}

// IsSuccess reports whether the rollup concluded successfully.
func (r Rollup) IsSuccess() bool {
	return r.Conclusion != nil && *r.Conclusion == CheckConclusionSuccess
}

// IsFailure reports whether the rollup concluded with a failure.
func (r Rollup) IsFailure() bool {
	return r.Conclusion != nil && *r.Conclusion == CheckConclusionFailure
}

// ConclusionString returns the conclusion, or an empty string while pending.
func (r Rollup) ConclusionString() string {
	if r.Conclusion == nil {
		return ""
	}
	return string(*r.Conclusion)
}
