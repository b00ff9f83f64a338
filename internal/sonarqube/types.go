package sonarqube

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultImpactQualities restricts discovery to security and reliability findings.
const DefaultImpactQualities = "SECURITY,RELIABILITY"

// Issue is one static-analysis finding.
type Issue struct {
	Key       string
	Rule      string
	Message   string
	Component string
	Path      string
	Line      *int
}

// LineNumber returns the reported line, or 0 when the issue has none.
func (i Issue) LineNumber() int {
	if i.Line == nil {
		return 0
	}
	return *i.Line
}

// SearchOptions filters /api/issues/search.
type SearchOptions struct {
	ProjectKey string
	Languages  []string
}

func (o SearchOptions) query(page int) map[string]string {
	q := map[string]string{
		"projects":                o.ProjectKey,
		"impactSoftwareQualities": DefaultImpactQualities,
	}
	if len(o.Languages) > 0 {
		q["languages"] = strings.Join(o.Languages, ",")
	}
	if page > 0 {
		q["p"] = strconv.Itoa(page)
	}
	return q
}

// SearchPage is one decoded search response.
type SearchPage struct {
	Total   int
	Issues  []Issue
	Dropped int
}

// searchResponse mirrors the JSON payload. Issues stay raw so a bad record can be dropped
// without failing the page.
type searchResponse struct {
	Total  *int `json:"total"`
	Paging struct {
		Total int `json:"total"`
	} `json:"paging"`
	Issues []json.RawMessage `json:"issues"`
}

type issueRecord struct {
	Key       *string `json:"key"`
	Rule      *string `json:"rule"`
	Message   *string `json:"message"`
	Component *string `json:"component"`
	Line      *int    `json:"line"`
}

// parseSearchResponse decodes issues, dropping records without key, message or component.
func parseSearchResponse(resp searchResponse, projectKey string) *SearchPage {
	page := &SearchPage{Total: resp.Paging.Total}
	if resp.Total != nil {
		page.Total = *resp.Total
	}

	for _, raw := range resp.Issues {
		issue, ok := parseIssue(raw, projectKey)
		if !ok {
			page.Dropped++
			continue
		}
		page.Issues = append(page.Issues, issue)
	}
	return page
}

func parseIssue(raw json.RawMessage, projectKey string) (Issue, bool) {
	var rec issueRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Issue{}, false
	}
	if rec.Key == nil || *rec.Key == "" || rec.Message == nil || rec.Component == nil {
		return Issue{}, false
	}

	issue := Issue{
		Key:       *rec.Key,
		Message:   *rec.Message,
		Component: *rec.Component,
		Path:      PathFromComponent(*rec.Component, projectKey),
		Line:      rec.Line,
	}
	if rec.Rule != nil {
		issue.Rule = *rec.Rule
	}
	return issue, true
}

// PathFromComponent strips the project key from a component key, e.g.
// "demo:src/Main.java" becomes "src/Main.java".
func PathFromComponent(component, projectKey string) string {
	path := component
	if projectKey != "" {
		path = strings.TrimPrefix(path, projectKey)
	}
	return strings.TrimLeft(path, ":/")
}
