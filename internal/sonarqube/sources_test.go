package sonarqube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesRaw(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "demo:src/Main.java" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":[{"msg":"Component not found"}]}`)
			return
		}
		fmt.Fprint(w, "package demo;\n\nclass Main {}\n")
	})

	src, err := client.Sources.Raw(context.Background(), "demo:src/Main.java")
	require.NoError(t, err)
	assert.Equal(t, "package demo;\n\nclass Main {}\n", src)
	assert.Equal(t, "/api/sources/raw", rs.requests[0].URL.Path)

	_, err = client.Sources.Raw(context.Background(), "demo:missing.java")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Component not found")
}

func TestPathFromComponent(t *testing.T) {
	tests := []struct {
		component string
		project   string
		want      string
	}{
		{"demo:src/Main.java", "demo", "src/Main.java"},
		{"demo:/src/Main.java", "demo", "src/Main.java"},
		{"other:src/Main.java", "demo", "other:src/Main.java"},
		{"src/Main.java", "", "src/Main.java"},
	}
	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			assert.Equal(t, tt.want, PathFromComponent(tt.component, tt.project))
		})
	}
}
