package actions

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

var (
	buildRun = model.WorkflowRun{
		Status:       model.CheckStatusCompleted,
		Conclusion:   ptr(model.CheckConclusionSuccess),
		Event:        "pull_request",
		URL:          "https://github.com/owner/repo/actions/runs/1",
		WorkflowName: "build",
	}
	lintRun = model.WorkflowRun{
		Status:       model.CheckStatusCompleted,
		Conclusion:   ptr(model.CheckConclusionFailure),
		Event:        "pull_request",
		URL:          "https://github.com/owner/repo/actions/runs/2",
		WorkflowName: "lint",
	}
	e2eRun = model.WorkflowRun{
		Status:       model.CheckStatusInProgress,
		Event:        "push",
		URL:          "https://github.com/owner/repo/actions/runs/3",
		WorkflowName: "e2e",
	}
)

func failedRollup() model.Rollup {
	return model.Rollup{
		Status:       ptr(model.CheckStatusCompleted),
		Conclusion:   ptr(model.CheckConclusionFailure),
		WorkflowRuns: []model.WorkflowRun{buildRun, lintRun},
	}
}

func TestReportFinal_Failure(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		StepSummaryPath: filepath.Join(dir, "summary.md"),
		OutputPath:      filepath.Join(dir, "output"),
		HTMLReportPath:  filepath.Join(dir, "report.html"),
		SelfWorkflowURL: "https://github.com/owner/repo/actions/runs/99",
	}
	var out bytes.Buffer

	r := NewReporter(&out, cfg)
	err := r.ReportFinal(context.Background(), failedRollup(), []model.WorkflowRun{lintRun})
	require.NoError(t, err)

	log := out.String()
	assert.Contains(t, log, "WORKFLOW")
	assert.Contains(t, log, "lint")
	assert.Contains(t, log, "::error title=Workflows failed::lint\n")

	outputs, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`(?s)^conclusion<<(\S+)\nFAILURE\n(\S+)\nfailed-workflow-names<<(\S+)\nlint\n(\S+)\n$`), string(outputs))

	summary, err := os.ReadFile(cfg.StepSummaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Some workflows failed")
	assert.Contains(t, string(summary), "| [lint (pull_request)](https://github.com/owner/repo/actions/runs/2) | COMPLETED | FAILURE |")
	assert.Contains(t, string(summary), cfg.SelfWorkflowURL)

	report, err := os.ReadFile(cfg.HTMLReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "<table>")
	assert.Contains(t, string(report), `<a href="https://github.com/owner/repo/actions/runs/2"`)
}

func TestReportFinal_SuccessWithoutFiles(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, Config{})

	rollup := model.Rollup{
		Status:       ptr(model.CheckStatusCompleted),
		Conclusion:   ptr(model.CheckConclusionSuccess),
		WorkflowRuns: []model.WorkflowRun{buildRun},
	}
	require.NoError(t, r.ReportFinal(context.Background(), rollup, nil))
	assert.NotContains(t, out.String(), "::error")
}

func TestReportFinal_AppendsToExistingSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("# previous step\n"), 0o644))

	r := NewReporter(&bytes.Buffer{}, Config{StepSummaryPath: path})
	require.NoError(t, r.ReportFinal(context.Background(), failedRollup(), []model.WorkflowRun{lintRun}))

	summary, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "# previous step\n"))
}

func TestReportFinal_UnwritableOutput(t *testing.T) {
	r := NewReporter(&bytes.Buffer{}, Config{OutputPath: filepath.Join(t.TempDir(), "missing", "output")})
	err := r.ReportFinal(context.Background(), failedRollup(), []model.WorkflowRun{lintRun})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing step outputs")
}

func TestReportProgress(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, Config{})

	r.ReportProgress(context.Background(), model.Rollup{
		WorkflowRuns: []model.WorkflowRun{buildRun, e2eRun},
	})

	log := out.String()
	assert.True(t, strings.HasPrefix(log, "::group::1 of 2 workflow runs completed\n"))
	assert.Contains(t, log, "e2e")
	assert.True(t, strings.HasSuffix(log, "::endgroup::\n"))
}

func TestMarkdownSummary_NoWorkflows(t *testing.T) {
	summary := markdownSummary(model.Rollup{
		Status:       ptr(model.CheckStatusCompleted),
		Conclusion:   ptr(model.CheckConclusionSuccess),
		WorkflowRuns: []model.WorkflowRun{},
	}, "")

	assert.Contains(t, summary, "All workflows succeeded")
	assert.Contains(t, summary, "No workflow run matched the filters.")
	assert.NotContains(t, summary, "|---|")
}

func TestMarkdownSummary_EscapesNames(t *testing.T) {
	run := buildRun
	run.WorkflowName = "build | [deploy]"

	summary := markdownSummary(model.Rollup{WorkflowRuns: []model.WorkflowRun{run}}, "")
	assert.Contains(t, summary, `build \| \[deploy\]`)
	assert.Contains(t, summary, "still running")
}

func TestFormatTable_PendingConclusion(t *testing.T) {
	table := formatTable([]model.WorkflowRun{e2eRun})
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "IN_PROGRESS")
	assert.Contains(t, lines[1], " - ")
}

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", renderMarkdown(""))
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := renderMarkdown("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderMarkdown_StripsScript(t *testing.T) {
	result := renderMarkdown("hello <script>alert(1)</script>")
	assert.Contains(t, result, "hello")
	assert.NotContains(t, result, "<script>")
}

func TestEscapeCommandData(t *testing.T) {
	assert.Equal(t, "a%0Ab%25c%0D", escapeCommandData("a\nb%c\r"))
}
