package actions

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

// formatTable renders the workflow runs as an aligned plain-text table for
// the job log.
func formatTable(runs []model.WorkflowRun) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORKFLOW\tEVENT\tSTATUS\tCONCLUSION\tURL")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			run.WorkflowName,
			run.Event,
			run.Status,
			conclusionText(run.Conclusion),
			run.URL,
		)
	}
	_ = tw.Flush()
	return b.String()
}

// markdownSummary renders the terminal rollup as a GitHub-flavored markdown
// section for the job summary.
func markdownSummary(rollup model.Rollup, selfWorkflowURL string) string {
	var b strings.Builder

	switch {
	case rollup.IsFailure():
		b.WriteString("## :x: Some workflows failed\n\n")
	case rollup.IsSuccess():
		b.WriteString("## :white_check_mark: All workflows succeeded\n\n")
	default:
		b.WriteString("## :hourglass: Workflows are still running\n\n")
	}

	if len(rollup.WorkflowRuns) == 0 {
		b.WriteString("No workflow run matched the filters.\n")
	} else {
		b.WriteString("| Workflow | Status | Conclusion |\n")
		b.WriteString("|---|---|---|\n")
		for _, run := range rollup.WorkflowRuns {
			fmt.Fprintf(&b, "| [%s (%s)](%s) | %s | %s |\n",
				escapeCell(run.WorkflowName),
				escapeCell(run.Event),
				run.URL,
				run.Status,
				conclusionText(run.Conclusion),
			)
		}
	}

	if selfWorkflowURL != "" {
		fmt.Fprintf(&b, "\n[Open this gate's run](%s)\n", selfWorkflowURL)
	}
	return b.String()
}

func conclusionText(c *model.CheckConclusionState) string {
	if c == nil {
		return "-"
	}
	return string(*c)
}

// escapeCell keeps user-controlled names from breaking the table or link syntax.
func escapeCell(s string) string {
	r := strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "\n", " ")
	return r.Replace(s)
}
