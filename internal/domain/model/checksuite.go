package model

import "time"

// CheckSuitesPage is one page of the check-suites query for a commit. It
// mirrors the shape of the GraphQL response so that structural problems can
// be detected by the caller instead of being papered over by the adapter.
type CheckSuitesPage struct {
	RateLimit *RateLimit // nil if the provider omitted it.
	Object    *GitObject // nil if the repository or object was not returned.
}

// RateLimit carries the GraphQL rate limit cost of a single query.
type RateLimit struct {
	Cost      int
	Remaining int
}

// GitObject is the git object the query resolved the oid to. Only commits
// carry check suites; CheckSuites is nil for every other type.
type GitObject struct {
	TypeName    GitObjectType
	CheckSuites *CheckSuiteConnection
}

// CheckSuiteConnection is a single page of a check suite connection.
type CheckSuiteConnection struct {
	TotalCount int
	PageInfo   PageInfo
	Nodes      []*CheckSuite // nil when the provider omitted the list.
}

// PageInfo is the cursor state of a connection.
type PageInfo struct {
	HasNextPage bool
	EndCursor   string
}

// CheckSuite is one raw check suite node.
type CheckSuite struct {
	Status      CheckStatusState
	Conclusion  OptionalConclusion
	WorkflowRun *WorkflowRunRef // nil for check suites not backed by a workflow run.
}

// WorkflowRunRef is the workflow run a check suite belongs to.
type WorkflowRunRef struct {
	DatabaseID   int64
	CreatedAt    time.Time
	Event        string
	URL          string
	WorkflowName string
}

// OptionalConclusion distinguishes a conclusion field that was absent from
// the response (Present == false) from one that was explicitly null
// (Present == true, Value == nil).
type OptionalConclusion struct {
	Present bool
	Value   *CheckConclusionState
}

// ConclusionOf returns a present, non-null conclusion.
func ConclusionOf(c CheckConclusionState) OptionalConclusion {
	return OptionalConclusion{Present: true, Value: &c}
}

// NullConclusion returns a conclusion that is present but not yet set.
func NullConclusion() OptionalConclusion {
	return OptionalConclusion{Present: true}
}

// CheckSuitesQuery holds the variables of one check-suites query.
type CheckSuitesQuery struct {
	Owner       string
	Repo        string
	SHA         string
	AppID       int64
	PageSize    int
	AfterCursor string // empty for the first page.
}
