package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
	"github.com/ericfisherdev/waitforworkflows/internal/domain/port/driven"
)

// Paginate runs the check-suites query page by page, following the end
// cursor until the connection reports no further pages, and returns the
// nodes of every page in arrival order.
//
// A page that does not have the shape the schema guarantees aborts the whole
// operation with an error wrapping model.ErrContractViolation.
func Paginate(ctx context.Context, fetcher driven.CheckSuiteFetcher, q model.CheckSuitesQuery) ([]*model.CheckSuite, error) {
	suites := []*model.CheckSuite{}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := fetcher.FetchCheckSuites(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("fetching check suites for %s/%s@%s (page %d): %w", q.Owner, q.Repo, q.SHA, page, err)
		}

		conn, err := validateCheckSuitesPage(p)
		if err != nil {
			return nil, fmt.Errorf("check suites for %s/%s@%s (page %d): %w", q.Owner, q.Repo, q.SHA, page, err)
		}

		suites = append(suites, conn.Nodes...)

		slog.Info("received check suites",
			"page", page,
			"received", len(suites),
			"total", conn.TotalCount,
			"rate_cost", p.RateLimit.Cost,
			"rate_remaining", p.RateLimit.Remaining,
		)

		if !conn.PageInfo.HasNextPage {
			return suites, nil
		}
		if conn.PageInfo.EndCursor == "" {
			return nil, fmt.Errorf("check suites page %d has a next page but no end cursor: %w", page, model.ErrContractViolation)
		}
		q.AfterCursor = conn.PageInfo.EndCursor
	}
}

// validateCheckSuitesPage checks the structural guarantees of one page and
// returns its check suite connection.
func validateCheckSuitesPage(p *model.CheckSuitesPage) (*model.CheckSuiteConnection, error) {
	switch {
	case p == nil:
		return nil, fmt.Errorf("empty response: %w", model.ErrContractViolation)
	case p.RateLimit == nil:
		return nil, fmt.Errorf("rateLimit is missing: %w", model.ErrContractViolation)
	case p.Object == nil:
		return nil, fmt.Errorf("repository object is missing: %w", model.ErrContractViolation)
	case p.Object.TypeName != model.GitObjectCommit:
		return nil, fmt.Errorf("object is a %s, want %s: %w", p.Object.TypeName, model.GitObjectCommit, model.ErrContractViolation)
	case p.Object.CheckSuites == nil:
		return nil, fmt.Errorf("checkSuites is missing: %w", model.ErrContractViolation)
	case p.Object.CheckSuites.Nodes == nil:
		return nil, fmt.Errorf("checkSuites.nodes is missing: %w", model.ErrContractViolation)
	}
	return p.Object.CheckSuites, nil
}
