package sonarqube

import (
	"context"
	"fmt"
)

const pathSourcesRaw = "/api/sources/raw"

// sourcesService implements the SourcesService interface.
type sourcesService struct {
	*service
}

// NewSourcesService initializes a new sources service.
func NewSourcesService(client *Client) SourcesService {
	return &sourcesService{service: &service{client}}
}

// Raw returns the raw text of the file identified by componentKey.
func (ss *sourcesService) Raw(ctx context.Context, componentKey string) (string, error) {
	response, err := ss.client.request(ctx).
		SetQueryParam("key", componentKey).
		Get(ss.client.BaseURL + pathSourcesRaw)
	if err != nil {
		return "", fmt.Errorf("error fetching source of %s: %w", componentKey, err)
	}
	if err := checkResponse(response); err != nil {
		return "", err
	}
	return response.String(), nil
}
