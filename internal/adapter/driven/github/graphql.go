package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ericfisherdev/waitforworkflows/internal/domain/model"
)

const checkSuitesQuery = `query checkSuites($owner: String!, $name: String!, $oid: GitObjectID!, $appId: Int!, $first: Int!, $afterCursor: String) {
	rateLimit {
		cost
		remaining
	}
	repository(owner: $owner, name: $name) {
		object(oid: $oid) {
			__typename
			... on Commit {
				checkSuites(filterBy: {appId: $appId}, first: $first, after: $afterCursor) {
					totalCount
					pageInfo {
						hasNextPage
						endCursor
					}
					nodes {
						status
						conclusion
						workflowRun {
							databaseId
							createdAt
							event
							url
							workflow {
								name
							}
						}
					}
				}
			}
		}
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// checkSuitesResponse represents the expected shape of a GitHub GraphQL
// response for the check-suites query. Pointers keep "missing" distinguishable
// from "empty" so the caller can detect contract violations.
type checkSuitesResponse struct {
	Data *struct {
		RateLimit *struct {
			Cost      int `json:"cost"`
			Remaining int `json:"remaining"`
		} `json:"rateLimit"`
		Repository *struct {
			Object *struct {
				TypeName    string `json:"__typename"`
				CheckSuites *struct {
					TotalCount int `json:"totalCount"`
					PageInfo   struct {
						HasNextPage bool    `json:"hasNextPage"`
						EndCursor   *string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []*checkSuiteNode `json:"nodes"`
				} `json:"checkSuites"`
			} `json:"object"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type checkSuiteNode struct {
	Status string `json:"status"`
	// Conclusion stays raw: nil when the field is absent, "null" when unset.
	Conclusion  json.RawMessage `json:"conclusion"`
	WorkflowRun *struct {
		DatabaseID int64     `json:"databaseId"`
		CreatedAt  time.Time `json:"createdAt"`
		Event      string    `json:"event"`
		URL        string    `json:"url"`
		Workflow   struct {
			Name string `json:"name"`
		} `json:"workflow"`
	} `json:"workflowRun"`
}

// FetchCheckSuites runs one page of the check-suites query through the
// go-github client, so the request shares its auth, retry and rate limit
// transport. GraphQL errors and non-2xx responses are returned as errors;
// structural validation of the data is left to the caller.
func (c *Client) FetchCheckSuites(ctx context.Context, q model.CheckSuitesQuery) (*model.CheckSuitesPage, error) {
	variables := map[string]any{
		"owner":       q.Owner,
		"name":        q.Repo,
		"oid":         q.SHA,
		"appId":       q.AppID,
		"first":       q.PageSize,
		"afterCursor": nil,
	}
	if q.AfterCursor != "" {
		variables["afterCursor"] = q.AfterCursor
	}

	req, err := c.gh.NewRequest(http.MethodPost, c.graphqlURL, graphqlRequest{
		Query:     checkSuitesQuery,
		Variables: variables,
	})
	if err != nil {
		return nil, fmt.Errorf("creating check suites request: %w", err)
	}

	var gqlResp checkSuitesResponse
	resp, err := c.gh.Do(ctx, req, &gqlResp)
	if err != nil {
		return nil, fmt.Errorf("querying check suites for %s/%s@%s: %w", q.Owner, q.Repo, q.SHA, err)
	}

	logRateLimit(resp, q.Owner+"/"+q.Repo+"/graphql", 0, 0)

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("querying check suites for %s/%s@%s: graphql: %s", q.Owner, q.Repo, q.SHA, gqlResp.Errors[0].Message)
	}

	return mapCheckSuitesPage(&gqlResp)
}

// mapCheckSuitesPage converts the GraphQL response into the domain page model.
func mapCheckSuitesPage(r *checkSuitesResponse) (*model.CheckSuitesPage, error) {
	page := &model.CheckSuitesPage{}
	if r.Data == nil {
		return page, nil
	}

	if rl := r.Data.RateLimit; rl != nil {
		page.RateLimit = &model.RateLimit{Cost: rl.Cost, Remaining: rl.Remaining}
	}

	if r.Data.Repository == nil || r.Data.Repository.Object == nil {
		return page, nil
	}

	obj := r.Data.Repository.Object
	page.Object = &model.GitObject{TypeName: model.GitObjectType(obj.TypeName)}
	if obj.CheckSuites == nil {
		return page, nil
	}

	conn := &model.CheckSuiteConnection{
		TotalCount: obj.CheckSuites.TotalCount,
		PageInfo: model.PageInfo{
			HasNextPage: obj.CheckSuites.PageInfo.HasNextPage,
		},
	}
	if obj.CheckSuites.PageInfo.EndCursor != nil {
		conn.PageInfo.EndCursor = *obj.CheckSuites.PageInfo.EndCursor
	}

	if obj.CheckSuites.Nodes != nil {
		conn.Nodes = make([]*model.CheckSuite, 0, len(obj.CheckSuites.Nodes))
		for i, node := range obj.CheckSuites.Nodes {
			suite, err := mapCheckSuite(node)
			if err != nil {
				return nil, fmt.Errorf("check suite %d: %w", i, err)
			}
			conn.Nodes = append(conn.Nodes, suite)
		}
	}

	page.Object.CheckSuites = conn
	return page, nil
}

// mapCheckSuite converts one node. A null node maps to a nil suite.
func mapCheckSuite(node *checkSuiteNode) (*model.CheckSuite, error) {
	if node == nil {
		return nil, nil
	}

	conclusion, err := mapConclusion(node.Conclusion)
	if err != nil {
		return nil, err
	}

	suite := &model.CheckSuite{
		Status:     model.CheckStatusState(node.Status),
		Conclusion: conclusion,
	}

	if wr := node.WorkflowRun; wr != nil {
		suite.WorkflowRun = &model.WorkflowRunRef{
			DatabaseID:   wr.DatabaseID,
			CreatedAt:    wr.CreatedAt,
			Event:        wr.Event,
			URL:          wr.URL,
			WorkflowName: wr.Workflow.Name,
		}
	}

	return suite, nil
}

// mapConclusion keeps the absent, null and set states of the conclusion field apart.
func mapConclusion(raw json.RawMessage) (model.OptionalConclusion, error) {
	if len(raw) == 0 {
		return model.OptionalConclusion{}, nil
	}
	if string(raw) == "null" {
		return model.NullConclusion(), nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.OptionalConclusion{}, fmt.Errorf("decoding conclusion %s: %w", raw, model.ErrContractViolation)
	}
	return model.ConclusionOf(model.CheckConclusionState(value)), nil
}
