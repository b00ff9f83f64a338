package sonarqube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/CHXSER/sqllmcg/pkg/shared/config"
	"github.com/CHXSER/sqllmcg/pkg/shared/httpclient"
)

// service wraps a client to access different services.
type service struct {
	client *Client
}

// Client configures and manages access to the SonarQube Web API.
type Client struct {
	HTTPClient *httpclient.Client
	BaseURL    string
	Logger     hclog.Logger
	Issues     IssuesService
	Sources    SourcesService
}

// IssuesService defines issue-related operations.
type IssuesService interface {
	Search(ctx context.Context, opts SearchOptions, page int) (*SearchPage, error)
	SearchAll(ctx context.Context, opts SearchOptions) ([]Issue, error)
	AddComment(ctx context.Context, issueKey, text string) error
	AddTags(ctx context.Context, issueKey string, tags []string) error
}

// SourcesService defines source-related operations.
type SourcesService interface {
	Raw(ctx context.Context, componentKey string) (string, error)
}

// APIError is returned for any non-success HTTP status.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.URL, e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("%s %s failed with status code %d and response: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// errorList is the SonarQube error payload.
type errorList struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// New initializes a SonarQube client authenticating with a bearer token.
func New(globalConfig *config.Config, logger hclog.Logger, baseURL, token string) *Client {
	httpClient := httpclient.New(logger, globalConfig, 0)
	httpClient.RestyClient.SetAuthToken(token)

	client := &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Logger:     logger,
	}
	client.Issues = NewIssuesService(client)
	client.Sources = NewSourcesService(client)

	return client
}

// request returns a request builder bound to ctx.
func (c *Client) request(ctx context.Context) *resty.Request {
	return c.HTTPClient.RestyClient.R().SetContext(ctx)
}

// get sends a GET request using the client's base URL, path, and query parameters provided.
func (c *Client) get(ctx context.Context, path string, queryParams map[string]string) (*resty.Response, error) {
	return c.request(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(queryParams).
		Get(c.BaseURL + path)
}

// postForm sends a form-encoded POST request.
func (c *Client) postForm(ctx context.Context, path string, form map[string]string) (*resty.Response, error) {
	return c.request(ctx).
		SetFormData(form).
		Post(c.BaseURL + path)
}

// checkResponse converts non-success statuses into an *APIError.
func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &APIError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
	var list errorList
	if err := json.Unmarshal(resp.Body(), &list); err == nil {
		for _, e := range list.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Msg)
		}
	}
	return apiErr
}

// unmarshalResponse checks the HTTP status and parses the JSON body into out.
func unmarshalResponse[T any](resp *resty.Response, out *T) error {
	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
