package sonarqube

import (
	"context"
	"fmt"
	"strings"
)

const (
	pathIssuesSearch = "/api/issues/search"
	pathAddComment   = "/api/issues/add_comment"
	pathAddTags      = "/api/issues/add_tags"
)

// issuesService implements the IssuesService interface.
type issuesService struct {
	*service
}

// NewIssuesService initializes a new issues service.
func NewIssuesService(client *Client) IssuesService {
	return &issuesService{service: &service{client}}
}

// Search fetches a single page. Page 0 omits the "p" parameter.
func (is *issuesService) Search(ctx context.Context, opts SearchOptions, page int) (*SearchPage, error) {
	response, err := is.client.get(ctx, pathIssuesSearch, opts.query(page))
	if err != nil {
		return nil, fmt.Errorf("error searching issues: %w", err)
	}

	var resp searchResponse
	if err := unmarshalResponse(response, &resp); err != nil {
		return nil, err
	}

	result := parseSearchResponse(resp, opts.ProjectKey)
	if result.Dropped > 0 {
		is.client.Logger.Debug("dropped malformed issue records", "page", page, "dropped", result.Dropped)
	}
	return result, nil
}

// SearchAll collects every issue matching opts.
//
// The first request carries no page parameter. When it reports total == 0 its issues are
// returned as is; otherwise pages 1..total are requested one by one. total is therefore
// treated as a page count even though SonarQube documents it as an item count. This mirrors
// the behavior existing users depend on.
func (is *issuesService) SearchAll(ctx context.Context, opts SearchOptions) ([]Issue, error) {
	is.client.Logger.Info("fetching list of issues", "project", opts.ProjectKey)

	first, err := is.Search(ctx, opts, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}
	if first.Total == 0 {
		is.client.Logger.Debug("search reported no total, using first response", "issues", len(first.Issues))
		return first.Issues, nil
	}

	var result []Issue
	for page := 1; page <= first.Total; page++ {
		is.client.Logger.Debug("fetching page of issues", "page", page, "total", first.Total)
		resp, err := is.Search(ctx, opts, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issues page %d of %d: %w", page, first.Total, err)
		}
		result = append(result, resp.Issues...)
	}

	is.client.Logger.Debug("successfully fetched all issues", "totalIssues", len(result))
	return result, nil
}

// AddComment attaches text as a comment to the issue.
func (is *issuesService) AddComment(ctx context.Context, issueKey, text string) error {
	response, err := is.client.postForm(ctx, pathAddComment, map[string]string{
		"issue": issueKey,
		"text":  text,
	})
	if err != nil {
		return fmt.Errorf("error adding comment to issue %s: %w", issueKey, err)
	}
	return checkResponse(response)
}

// AddTags adds tags to the issue. SonarQube ignores tags that are already present.
func (is *issuesService) AddTags(ctx context.Context, issueKey string, tags []string) error {
	response, err := is.client.postForm(ctx, pathAddTags, map[string]string{
		"issue": issueKey,
		"tags":  strings.Join(tags, ","),
	})
	if err != nil {
		return fmt.Errorf("error adding tags to issue %s: %w", issueKey, err)
	}
	return checkResponse(response)
}
