package driven

import (
	"context"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

// Reporter defines the driven port for presenting rollups.
type Reporter interface {
	// ReportProgress is called for every poll cycle that does not terminate the wait.
	ReportProgress(ctx context.Context, rollup model.Rollup)
	// ReportFinal is called once with the terminal rollup. failed lists the
	// workflow runs with a failing conclusion and is empty on success.
	ReportFinal(ctx context.Context, rollup model.Rollup, failed []model.WorkflowRun) error
}
