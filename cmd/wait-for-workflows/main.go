// Command wait-for-workflows blocks a GitHub Actions job until the other
// workflow runs of the same commit have finished, and fails the job when any
// of them failed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/waitforworkflows/internal/adapter/driven/actions"
	githubadapter "github.com/ericfisherdev/waitforworkflows/internal/adapter/driven/github"
	"github.com/ericfisherdev/waitforworkflows/internal/application"
	"github.com/ericfisherdev/waitforworkflows/internal/config"
	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

// Process exit codes.
const (
	exitSuccess  = 0
	exitFailed   = 1 // At least one workflow run failed.
	exitInternal = 2 // Configuration, API or contract error.
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and maps its outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return exitCode(stdout, err)
}

func exitCode(stdout io.Writer, err error) int {
	var failedErr *application.WorkflowsFailedError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &failedErr):
		slog.Error("workflows failed", "workflows", failedErr.Names)
		return exitFailed
	default:
		slog.Error("fatal error", "error", err)
		fmt.Fprintf(stdout, "::error title=wait-for-workflows::%s\n", commandDataEscaper.Replace(err.Error()))
		return exitInternal
	}
}

// commandDataEscaper escapes the message of a workflow command.
var commandDataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wait-for-workflows",
		Short:         "Wait for the workflow runs of a commit and fail if any of them failed",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 1. Load the optional dotenv file before reading the environment.
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("loading env file: %w", err)
				}
			}

			// 2. Load configuration: defaults, file, environment, then flags.
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			setupLogger(stderr, cfg.Debug)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return run(cmd.Context(), cfg, stdout)
		},
	}

	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().String("env-file", "", "dotenv file loaded into the environment before reading inputs")
	config.RegisterFlags(cmd.Flags())
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func setupLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	slog.Info("config loaded",
		"repository", cfg.Repository,
		"sha", cfg.SHA,
		"self_workflow", cfg.SelfWorkflowName,
		"fail_fast", cfg.FailFast,
		"latest_runs_only", cfg.LatestRunsOnly,
		"initial_delay", cfg.InitialDelay,
		"period", cfg.Period,
	)

	owner, repo, err := githubadapter.SplitRepo(cfg.Repository)
	if err != nil {
		return err
	}

	client, err := githubadapter.NewClient(cfg.Token, githubadapter.Options{
		APIURL:     cfg.APIURL,
		GraphQLURL: cfg.GraphQLURL,
		RetryMax:   cfg.RetryMax,
		Logger:     slog.Default(),
	})
	if err != nil {
		return err
	}

	sha, err := client.ResolveCommitSHA(ctx, cfg.Repository, cfg.SHA)
	if err != nil {
		return err
	}

	reporter := actions.NewReporter(stdout, actions.Config{
		StepSummaryPath: cfg.StepSummaryPath,
		OutputPath:      cfg.OutputPath,
		HTMLReportPath:  cfg.HTMLReportPath,
		SelfWorkflowURL: cfg.SelfWorkflowURL,
	})

	svc := application.NewWaitService(client, reporter, application.WaitConfig{
		Owner:        owner,
		Repo:         repo,
		SHA:          sha,
		PageSize:     cfg.PageSize,
		InitialDelay: cfg.InitialDelay,
		Period:       cfg.Period,
		Options: model.RollupOptions{
			SelfWorkflowName:     cfg.SelfWorkflowName,
			FilterWorkflowEvents: cfg.FilterWorkflowEvents,
			ExcludeWorkflowNames: cfg.ExcludeWorkflowNames,
			FilterWorkflowNames:  cfg.FilterWorkflowNames,
			FailFast:             cfg.FailFast,
			LatestRunsOnly:       cfg.LatestRunsOnly,
		},
	})

	rollup, err := svc.Wait(ctx)
	if err != nil {
		return err
	}

	slog.Info("all workflows succeeded", "workflow_runs", len(rollup.WorkflowRuns))
	return nil
}
