// Package ollama talks to the Ollama generate API and cleans its answers for SonarQube.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/CHXSER/sqllmcg/pkg/shared/config"
	"github.com/CHXSER/sqllmcg/pkg/shared/httpclient"
)

const pathGenerate = "/api/generate"

// ErrUnreachable indicates the Ollama server could not be reached or answered with a non-2xx status.
var ErrUnreachable = errors.New("ollama server unreachable")

// Client calls the Ollama API. Use New to build one.
type Client struct {
	HTTPClient *httpclient.Client
	BaseURL    string
	Logger     hclog.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

// New builds a client for the Ollama server at baseURL.
func New(globalConfig *config.Config, logger hclog.Logger, baseURL string) *Client {
	timeout := config.DefaultInferenceTimeout
	if globalConfig != nil {
		timeout = config.SetThen(globalConfig.HTTPClient.InferenceTimeout, timeout)
	}
	return &Client{
		HTTPClient: httpclient.New(logger, globalConfig, timeout),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Logger:     logger,
	}
}

// Generate sends prompt to model as a single non-streamed request and returns the raw answer.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.HTTPClient.RestyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{Model: model, Prompt: prompt, Stream: false}).
		Post(c.BaseURL + pathGenerate)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w: %v", ErrUnreachable, err)
	}

	var body generateResponse
	decodeErr := json.Unmarshal(resp.Body(), &body)

	if !resp.IsSuccess() {
		if decodeErr == nil && body.Error != "" {
			return "", fmt.Errorf("ollama generate: %w: HTTP %d: %s", ErrUnreachable, resp.StatusCode(), body.Error)
		}
		return "", fmt.Errorf("ollama generate: %w: HTTP %d: %s", ErrUnreachable, resp.StatusCode(), resp.String())
	}
	if decodeErr != nil {
		return "", fmt.Errorf("ollama generate: parse response: %w", decodeErr)
	}
	if body.Response == nil {
		return "", fmt.Errorf("ollama generate: response field missing")
	}

	c.Logger.Debug("model answered", "model", model, "chars", len(*body.Response))
	return *body.Response, nil
}
