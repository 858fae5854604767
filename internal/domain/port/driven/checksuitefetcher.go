package driven

import (
	"context"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

// CheckSuiteFetcher defines the driven port for reading check suites of a commit.
type CheckSuiteFetcher interface {
	// FetchCheckSuites runs one page of the check-suites query. The returned
	// page is passed through unvalidated; structural checks belong to the caller.
	FetchCheckSuites(ctx context.Context, q model.CheckSuitesQuery) (*model.CheckSuitesPage, error)
}

// CheckSuiteFetcherFunc adapts a plain function to the CheckSuiteFetcher port.
type CheckSuiteFetcherFunc func(ctx context.Context, q model.CheckSuitesQuery) (*model.CheckSuitesPage, error)

// FetchCheckSuites calls f(ctx, q).
func (f CheckSuiteFetcherFunc) FetchCheckSuites(ctx context.Context, q model.CheckSuitesQuery) (*model.CheckSuitesPage, error) {
	return f(ctx, q)
}
