// Package config loads the gate configuration from a YAML file, the GitHub
// Actions environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Config holds the gate configuration.
type Config struct {
	Token      string `yaml:"-"`
	Repository string `yaml:"repository"` // owner/repo
	SHA        string `yaml:"sha"`        // Commit SHA, or a branch or tag to resolve.

	SelfWorkflowName     string   `yaml:"self_workflow_name"`
	SelfWorkflowURL      string   `yaml:"self_workflow_url"`
	FilterWorkflowEvents []string `yaml:"filter_workflow_events"`
	ExcludeWorkflowNames []string `yaml:"exclude_workflow_names"`
	FilterWorkflowNames  []string `yaml:"filter_workflow_names"`
	FailFast             bool     `yaml:"fail_fast"`
	LatestRunsOnly       bool     `yaml:"latest_runs_only"`

	InitialDelay time.Duration `yaml:"initial_delay"`
	Period       time.Duration `yaml:"period"`
	PageSize     int           `yaml:"page_size_of_check_suites"`
	RetryMax     int           `yaml:"retry_max"`

	APIURL          string `yaml:"api_url"`
	GraphQLURL      string `yaml:"graphql_url"`
	StepSummaryPath string `yaml:"-"`
	OutputPath      string `yaml:"-"`
	HTMLReportPath  string `yaml:"html_report"`
	Debug           bool   `yaml:"debug"`
}

// defaults returns a Config populated with the default values of the action inputs.
func defaults() *Config {
	return &Config{
		FilterWorkflowEvents: []string{},
		ExcludeWorkflowNames: []string{},
		FilterWorkflowNames:  []string{},
		FailFast:             true,
		InitialDelay:         10 * time.Second,
		Period:               15 * time.Second,
		PageSize:             100,
		RetryMax:             4,
		APIURL:               "https://api.github.com",
		GraphQLURL:           "https://api.github.com/graphql",
	}
}

// Load builds the configuration from the defaults, the YAML file at path (if
// path is non-empty) and the environment, in that order of precedence.
//
// Action inputs are read from INPUT_<NAME> variables, accepting either the
// hyphenated form the runner exports (INPUT_PERIOD-SECONDS) or underscores.
// Repository context comes from the GITHUB_* variables of the runner.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupInput("token"); ok && v != "" {
		cfg.Token = v
	} else if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Token = v
	}

	if v, ok := lookupInput("sha"); ok && v != "" {
		cfg.SHA = v
	} else if cfg.SHA == "" {
		cfg.SHA = os.Getenv("GITHUB_SHA")
	}

	if v, ok := os.LookupEnv("GITHUB_REPOSITORY"); ok && v != "" {
		cfg.Repository = v
	}
	if v, ok := os.LookupEnv("GITHUB_WORKFLOW"); ok && v != "" {
		cfg.SelfWorkflowName = v
	}
	if url := selfWorkflowURL(cfg.Repository); url != "" {
		cfg.SelfWorkflowURL = url
	}

	if v, ok := lookupInput("filter-workflow-events"); ok {
		cfg.FilterWorkflowEvents = multiline(v)
	}
	if v, ok := lookupInput("exclude-workflow-names"); ok {
		cfg.ExcludeWorkflowNames = multiline(v)
	}
	if v, ok := lookupInput("filter-workflow-names"); ok {
		cfg.FilterWorkflowNames = multiline(v)
	}

	var err error
	if cfg.FailFast, err = boolInput("fail-fast", cfg.FailFast); err != nil {
		return err
	}
	if cfg.LatestRunsOnly, err = boolInput("latest-runs-only", cfg.LatestRunsOnly); err != nil {
		return err
	}
	if cfg.InitialDelay, err = secondsInput("initial-delay-seconds", cfg.InitialDelay); err != nil {
		return err
	}
	if cfg.Period, err = secondsInput("period-seconds", cfg.Period); err != nil {
		return err
	}
	if cfg.PageSize, err = intInput("page-size-of-check-suites", cfg.PageSize); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("GITHUB_API_URL"); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv("GITHUB_GRAPHQL_URL"); ok && v != "" {
		cfg.GraphQLURL = v
	}
	cfg.StepSummaryPath = os.Getenv("GITHUB_STEP_SUMMARY")
	cfg.OutputPath = os.Getenv("GITHUB_OUTPUT")
	if os.Getenv("RUNNER_DEBUG") == "1" {
		cfg.Debug = true
	}

	return nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Token == "" {
		errs = append(errs, errors.New("token is required (INPUT_TOKEN or GITHUB_TOKEN)"))
	}
	if parts := strings.SplitN(c.Repository, "/", 2); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		errs = append(errs, fmt.Errorf("repository %q must be in owner/repo form (GITHUB_REPOSITORY)", c.Repository))
	}
	if c.SHA == "" {
		errs = append(errs, errors.New("sha is required (INPUT_SHA or GITHUB_SHA)"))
	}
	if c.InitialDelay < 0 {
		errs = append(errs, fmt.Errorf("initial delay %s must not be negative", c.InitialDelay))
	}
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("period %s must be positive", c.Period))
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size of check suites %d must be between 1 and 100", c.PageSize))
	}
	if c.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("retry max %d must not be negative", c.RetryMax))
	}
	for _, p := range append(append([]string{}, c.ExcludeWorkflowNames...), c.FilterWorkflowNames...) {
		if _, err := glob.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid workflow name pattern %q: %w", p, err))
		}
	}

	return errors.Join(errs...)
}

// selfWorkflowURL links to the run of this gate when the runner exposes its id.
func selfWorkflowURL(repository string) string {
	runID := os.Getenv("GITHUB_RUN_ID")
	if runID == "" || repository == "" {
		return ""
	}
	server := os.Getenv("GITHUB_SERVER_URL")
	if server == "" {
		server = "https://github.com"
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", strings.TrimSuffix(server, "/"), repository, runID)
}

// lookupInput reads an action input by its hyphenated name.
func lookupInput(name string) (string, bool) {
	upper := strings.ToUpper(name)
	if v, ok := os.LookupEnv("INPUT_" + upper); ok {
		return strings.TrimSpace(v), true
	}
	if v, ok := os.LookupEnv("INPUT_" + strings.ReplaceAll(upper, "-", "_")); ok {
		return strings.TrimSpace(v), true
	}
	return "", false
}

// multiline splits a multiline input into its non-empty, trimmed lines.
func multiline(v string) []string {
	lines := []string{}
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func boolInput(name string, def bool) (bool, error) {
	v, ok := lookupInput(name)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("input %s has invalid boolean %q: %w", name, v, err)
	}
	return b, nil
}

func intInput(name string, def int) (int, error) {
	v, ok := lookupInput(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("input %s has invalid integer %q: %w", name, v, err)
	}
	return n, nil
}

func secondsInput(name string, def time.Duration) (time.Duration, error) {
	v, ok := lookupInput(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("input %s has invalid number of seconds %q: %w", name, v, err)
	}
	return time.Duration(n) * time.Second, nil
}
