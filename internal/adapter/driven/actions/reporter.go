// Package actions implements the Reporter port for GitHub Actions: job log
// workflow commands, step outputs, the job summary and an optional HTML report.
package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
	"github.com/ericfisherdev/waitforworkflows/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Reporter = (*Reporter)(nil)

// Config tells the Reporter where to write. Empty paths are skipped, which
// is the case when running outside of GitHub Actions.
type Config struct {
	StepSummaryPath string // $GITHUB_STEP_SUMMARY
	OutputPath      string // $GITHUB_OUTPUT
	HTMLReportPath  string
	SelfWorkflowURL string
}

// Reporter implements the driven.Reporter port.
type Reporter struct {
	out io.Writer
	cfg Config
}

// NewReporter creates a Reporter writing workflow commands to out.
func NewReporter(out io.Writer, cfg Config) *Reporter {
	return &Reporter{out: out, cfg: cfg}
}

// ReportProgress logs which workflow runs are still pending and prints the
// current table in a collapsible group.
func (r *Reporter) ReportProgress(_ context.Context, rollup model.Rollup) {
	var pending []string
	for _, run := range rollup.WorkflowRuns {
		if !run.IsCompleted() {
			pending = append(pending, run.WorkflowName)
		}
	}

	slog.Info("waiting for workflow runs",
		"completed", len(rollup.WorkflowRuns)-len(pending),
		"total", len(rollup.WorkflowRuns),
		"pending", strings.Join(pending, ", "),
		"conclusion", rollup.ConclusionString(),
	)

	fmt.Fprintf(r.out, "::group::%d of %d workflow runs completed\n", len(rollup.WorkflowRuns)-len(pending), len(rollup.WorkflowRuns))
	fmt.Fprint(r.out, formatTable(rollup.WorkflowRuns))
	fmt.Fprintln(r.out, "::endgroup::")
}

// ReportFinal prints the terminal rollup, sets the step outputs, appends the
// job summary and writes the HTML report. Writing stops at the first error.
func (r *Reporter) ReportFinal(_ context.Context, rollup model.Rollup, failed []model.WorkflowRun) error {
	fmt.Fprint(r.out, formatTable(rollup.WorkflowRuns))

	failedNames := make([]string, 0, len(failed))
	for _, run := range failed {
		failedNames = append(failedNames, run.WorkflowName)
	}
	if rollup.IsFailure() {
		fmt.Fprintf(r.out, "::error title=Workflows failed::%s\n", escapeCommandData(strings.Join(failedNames, "\n")))
	}

	slog.Info("rollup concluded",
		"conclusion", rollup.ConclusionString(),
		"workflow_runs", len(rollup.WorkflowRuns),
		"failed", strings.Join(failedNames, ", "),
	)

	if r.cfg.OutputPath != "" {
		err := appendOutputs(r.cfg.OutputPath, []output{
			{name: "conclusion", value: rollup.ConclusionString()},
			{name: "failed-workflow-names", value: strings.Join(failedNames, "\n")},
		})
		if err != nil {
			return fmt.Errorf("writing step outputs: %w", err)
		}
	}

	summary := markdownSummary(rollup, r.cfg.SelfWorkflowURL)

	if r.cfg.StepSummaryPath != "" {
		if err := appendFile(r.cfg.StepSummaryPath, summary); err != nil {
			return fmt.Errorf("writing job summary: %w", err)
		}
	}

	if r.cfg.HTMLReportPath != "" {
		if err := os.WriteFile(r.cfg.HTMLReportPath, renderHTMLReport(summary), 0o644); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
		slog.Info("html report written", "path", r.cfg.HTMLReportPath)
	}

	return nil
}

// escapeCommandData escapes a workflow command message.
func escapeCommandData(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}
