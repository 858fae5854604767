package config

import (
	"time"

	"github.com/spf13/pflag"
)

// RegisterFlags adds the command-line overrides to fs. Flags only take effect
// when set explicitly; see ApplyFlags.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("repository", "", "repository in owner/repo form (default $GITHUB_REPOSITORY)")
	fs.String("sha", "", "commit SHA, branch or tag to wait on (default $INPUT_SHA or $GITHUB_SHA)")
	fs.String("self-workflow-name", "", "workflow name to exclude (default $GITHUB_WORKFLOW)")
	fs.StringSlice("filter-workflow-events", nil, "only wait on workflow runs triggered by these events")
	fs.StringSlice("exclude-workflow-names", nil, "glob patterns of workflow names to ignore")
	fs.StringSlice("filter-workflow-names", nil, "glob patterns of workflow names to wait on")
	fs.Bool("fail-fast", true, "stop as soon as any workflow run fails")
	fs.Bool("latest-runs-only", false, "ignore workflow runs superseded by a re-run")
	fs.Duration("initial-delay", 10*time.Second, "delay before the first poll")
	fs.Duration("period", 15*time.Second, "delay between polls")
	fs.Int("page-size", 100, "check suites fetched per query page")
	fs.Int("retry-max", 4, "retries of a failed API request")
	fs.String("html-report", "", "write an HTML report of the final rollup to this path")
	fs.Bool("debug", false, "enable debug logging")
}

// ApplyFlags copies every flag that was set on the command line into cfg.
// Flags registered by RegisterFlags but not present in fs are ignored.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set("repository", func() (e error) { cfg.Repository, e = fs.GetString("repository"); return })
	set("sha", func() (e error) { cfg.SHA, e = fs.GetString("sha"); return })
	set("self-workflow-name", func() (e error) { cfg.SelfWorkflowName, e = fs.GetString("self-workflow-name"); return })
	set("filter-workflow-events", func() (e error) { cfg.FilterWorkflowEvents, e = fs.GetStringSlice("filter-workflow-events"); return })
	set("exclude-workflow-names", func() (e error) { cfg.ExcludeWorkflowNames, e = fs.GetStringSlice("exclude-workflow-names"); return })
	set("filter-workflow-names", func() (e error) { cfg.FilterWorkflowNames, e = fs.GetStringSlice("filter-workflow-names"); return })
	set("fail-fast", func() (e error) { cfg.FailFast, e = fs.GetBool("fail-fast"); return })
	set("latest-runs-only", func() (e error) { cfg.LatestRunsOnly, e = fs.GetBool("latest-runs-only"); return })
	set("initial-delay", func() (e error) { cfg.InitialDelay, e = fs.GetDuration("initial-delay"); return })
	set("period", func() (e error) { cfg.Period, e = fs.GetDuration("period"); return })
	set("page-size", func() (e error) { cfg.PageSize, e = fs.GetInt("page-size"); return })
	set("retry-max", func() (e error) { cfg.RetryMax, e = fs.GetInt("retry-max"); return })
	set("html-report", func() (e error) { cfg.HTMLReportPath, e = fs.GetString("html-report"); return })
	set("debug", func() (e error) { cfg.Debug, e = fs.GetBool("debug"); return })

	return err
}
