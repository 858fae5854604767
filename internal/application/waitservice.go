// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
	"github.com/ericfisherdev/waitforworkflows/internal/domain/port/driven"
)

// WaitConfig holds everything one wait needs. It is fully populated by the
// caller; the service never reads the environment.
type WaitConfig struct {
	Owner        string
	Repo         string
	SHA          string
	PageSize     int
	InitialDelay time.Duration
	Period       time.Duration
	Options      model.RollupOptions
}

// WorkflowsFailedError is returned by Wait when the gate concludes with a
// failure. It is an expected outcome, not an internal error.
type WorkflowsFailedError struct {
	Names []string
}

func (e *WorkflowsFailedError) Error() string {
	if len(e.Names) == 0 {
		return "workflows failed"
	}
	return "workflows failed: " + strings.Join(e.Names, ", ")
}

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customizes a WaitService.
type Option func(*WaitService)

// WithSleep replaces the timer-based sleep between polls.
func WithSleep(fn SleepFunc) Option {
	return func(s *WaitService) {
		s.sleep = fn
	}
}

// WaitService polls the check suites of a commit until their rollup is final.
type WaitService struct {
	fetcher  driven.CheckSuiteFetcher
	reporter driven.Reporter
	cfg      WaitConfig
	sleep    SleepFunc
}

// NewWaitService creates a new WaitService with all required dependencies.
func NewWaitService(fetcher driven.CheckSuiteFetcher, reporter driven.Reporter, cfg WaitConfig, opts ...Option) *WaitService {
	s := &WaitService{
		fetcher:  fetcher,
		reporter: reporter,
		cfg:      cfg,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait sleeps for the initial delay, then polls every period until the rollup
// is completed, or until it fails when fail-fast is enabled. There is no
// deadline; callers bound the wait through ctx.
//
// Wait returns the terminal rollup. When it concluded with a failure the
// error is a *WorkflowsFailedError. Any other error is fatal and no rollup
// is reported.
func (s *WaitService) Wait(ctx context.Context) (model.Rollup, error) {
	slog.Info("waiting for workflows",
		"repo", s.cfg.Owner+"/"+s.cfg.Repo,
		"sha", s.cfg.SHA,
		"initial_delay", s.cfg.InitialDelay,
		"period", s.cfg.Period,
		"fail_fast", s.cfg.Options.FailFast,
	)

	if err := s.sleep(ctx, s.cfg.InitialDelay); err != nil {
		return model.Rollup{}, err
	}

	for cycle := 1; ; cycle++ {
		start := time.Now()

		rollup, err := s.poll(ctx)
		if err != nil {
			return model.Rollup{}, err
		}

		slog.Info("poll cycle complete",
			"cycle", cycle,
			"workflow_runs", len(rollup.WorkflowRuns),
			"conclusion", rollup.ConclusionString(),
			"duration", time.Since(start).Round(time.Millisecond),
		)

		if ShouldStop(rollup, s.cfg.Options.FailFast) {
			return s.finish(ctx, rollup)
		}

		s.reporter.ReportProgress(ctx, rollup)

		if err := s.sleep(ctx, s.cfg.Period); err != nil {
			return model.Rollup{}, err
		}
	}
}

// ShouldStop reports whether the rollup ends the wait: every run completed,
// or a run failed and fail-fast allows leaving the rest in flight.
func ShouldStop(rollup model.Rollup, failFast bool) bool {
	if rollup.IsCompleted() {
		return true
	}
	return failFast && rollup.IsFailure()
}

// poll drains every page of check suites and computes a fresh rollup.
func (s *WaitService) poll(ctx context.Context) (model.Rollup, error) {
	suites, err := Paginate(ctx, s.fetcher, model.CheckSuitesQuery{
		Owner:    s.cfg.Owner,
		Repo:     s.cfg.Repo,
		SHA:      s.cfg.SHA,
		AppID:    model.GitHubActionsAppID,
		PageSize: s.cfg.PageSize,
	})
	if err != nil {
		return model.Rollup{}, err
	}

	rollup, err := RollupChecks(suites, s.cfg.Options)
	if err != nil {
		return model.Rollup{}, fmt.Errorf("rolling up %d check suites: %w", len(suites), err)
	}
	return rollup, nil
}

// finish reports the terminal rollup and converts a failure into a
// WorkflowsFailedError.
func (s *WaitService) finish(ctx context.Context, rollup model.Rollup) (model.Rollup, error) {
	failed := FailedWorkflowRuns(rollup.WorkflowRuns)

	if err := s.reporter.ReportFinal(ctx, rollup, failed); err != nil {
		return rollup, fmt.Errorf("reporting final rollup: %w", err)
	}

	if rollup.IsFailure() {
		return rollup, &WorkflowsFailedError{Names: WorkflowNames(failed)}
	}
	return rollup, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
