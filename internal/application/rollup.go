package application

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

// RollupChecks reduces the raw check suites of one poll cycle to a Rollup.
// It normalizes the nodes, applies the filters of opts in a fixed order,
// sorts the survivors by workflow name and aggregates their states.
// The result depends only on its arguments.
func RollupChecks(suites []*model.CheckSuite, opts model.RollupOptions) (model.Rollup, error) {
	runs, err := normalizeCheckSuites(suites)
	if err != nil {
		return model.Rollup{}, err
	}

	runs, err = filterWorkflowRuns(runs, opts)
	if err != nil {
		return model.Rollup{}, err
	}

	if opts.LatestRunsOnly {
		runs = latestWorkflowRuns(runs)
	}

	slices.SortStableFunc(runs, func(a, b model.WorkflowRun) int {
		return strings.Compare(a.WorkflowName, b.WorkflowName)
	})

	return model.Rollup{
		Status:       DetermineRollupStatus(runs),
		Conclusion:   DetermineRollupConclusion(runs),
		WorkflowRuns: runs,
	}, nil
}

// normalizeCheckSuites converts check suites backed by a workflow run into
// WorkflowRuns. Check suites without a workflow run belong to other apps and
// are skipped.
func normalizeCheckSuites(suites []*model.CheckSuite) ([]model.WorkflowRun, error) {
	runs := make([]model.WorkflowRun, 0, len(suites))
	for i, node := range suites {
		if node == nil {
			return nil, fmt.Errorf("check suite %d is null: %w", i, model.ErrContractViolation)
		}
		if node.WorkflowRun == nil {
			continue
		}
		if !node.Conclusion.Present {
			return nil, fmt.Errorf("check suite %d has no conclusion field: %w", i, model.ErrContractViolation)
		}

		runs = append(runs, model.WorkflowRun{
			Status:       node.Status,
			Conclusion:   node.Conclusion.Value,
			Event:        node.WorkflowRun.Event,
			URL:          node.WorkflowRun.URL,
			WorkflowName: node.WorkflowRun.WorkflowName,
			CreatedAt:    node.WorkflowRun.CreatedAt,
			DatabaseID:   node.WorkflowRun.DatabaseID,
		})
	}
	return runs, nil
}

// filterWorkflowRuns applies, in order: self exclusion, the event allow-list,
// the name deny-list and the name allow-list. Each stage only sees the
// survivors of the previous one.
func filterWorkflowRuns(runs []model.WorkflowRun, opts model.RollupOptions) ([]model.WorkflowRun, error) {
	exclude, err := newNameMatcher(opts.ExcludeWorkflowNames)
	if err != nil {
		return nil, err
	}
	include, err := newNameMatcher(opts.FilterWorkflowNames)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.WorkflowRun, 0, len(runs))
	for _, run := range runs {
		// The gate's own run only completes after Wait returns.
		if run.WorkflowName == opts.SelfWorkflowName {
			continue
		}
		if len(opts.FilterWorkflowEvents) > 0 && !slices.Contains(opts.FilterWorkflowEvents, run.Event) {
			continue
		}
		if len(opts.ExcludeWorkflowNames) > 0 && exclude.MatchAny(run.WorkflowName) {
			continue
		}
		if len(opts.FilterWorkflowNames) > 0 && !include.MatchAny(run.WorkflowName) {
			continue
		}
		filtered = append(filtered, run)
	}
	return filtered, nil
}

// latestWorkflowRuns keeps the newest run for each workflow name and event,
// dropping runs superseded by a re-run. Newest is the latest CreatedAt, with
// the higher DatabaseID winning ties. First-seen order is preserved.
func latestWorkflowRuns(runs []model.WorkflowRun) []model.WorkflowRun {
	type identity struct {
		name  string
		event string
	}

	index := make(map[identity]int, len(runs))
	latest := make([]model.WorkflowRun, 0, len(runs))
	for _, run := range runs {
		key := identity{name: run.WorkflowName, event: run.Event}
		i, seen := index[key]
		if !seen {
			index[key] = len(latest)
			latest = append(latest, run)
			continue
		}
		if isNewerRun(run, latest[i]) {
			latest[i] = run
		}
	}
	return latest
}

func isNewerRun(a, b model.WorkflowRun) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.DatabaseID > b.DatabaseID
}

// DetermineRollupStatus returns COMPLETED when every run is completed,
// including when there are no runs at all, and nil otherwise.
func DetermineRollupStatus(runs []model.WorkflowRun) *model.CheckStatusState {
	for _, run := range runs {
		if !run.IsCompleted() {
			return nil
		}
	}
	return ptr(model.CheckStatusCompleted)
}

// DetermineRollupConclusion returns FAILURE as soon as any run has a failing
// conclusion, SUCCESS when every run is completed, and nil while runs are
// still in flight without a failure.
func DetermineRollupConclusion(runs []model.WorkflowRun) *model.CheckConclusionState {
	if slices.ContainsFunc(runs, model.WorkflowRun.IsFailing) {
		return ptr(model.CheckConclusionFailure)
	}
	if DetermineRollupStatus(runs) != nil {
		return ptr(model.CheckConclusionSuccess)
	}
	return nil
}

// FailedWorkflowRuns returns the runs with a failing conclusion, in order.
func FailedWorkflowRuns(runs []model.WorkflowRun) []model.WorkflowRun {
	failed := []model.WorkflowRun{}
	for _, run := range runs {
		if run.IsFailing() {
			failed = append(failed, run)
		}
	}
	return failed
}

// WorkflowNames returns the workflow name of each run.
func WorkflowNames(runs []model.WorkflowRun) []string {
	names := make([]string, 0, len(runs))
	for _, run := range runs {
		names = append(names, run.WorkflowName)
	}
	return names
}

func ptr[T any](v T) *T {
	return &v
}
