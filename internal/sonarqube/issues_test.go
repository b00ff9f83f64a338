package sonarqube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHXSER/sqllmcg/pkg/shared/config"
)

// recordingServer serves canned responses per page and records every request.
type recordingServer struct {
	mu       sync.Mutex
	requests []*http.Request
	forms    []map[string]string
}

func (rs *recordingServer) record(r *http.Request) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.requests = append(rs.requests, r)
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		rs.forms = append(rs.forms, form)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingServer) {
	t.Helper()
	rs := &recordingServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.record(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(&config.Config{}, hclog.NewNullLogger(), srv.URL+"/", "squ_test"), rs
}

func TestSearchAll_RequestsOnePagePerTotalUnit(t *testing.T) {
	pages := map[string]string{
		"":  `{"total": 2, "issues": []}`,
		"1": `{"total": 2, "issues": [{"key":"AX-1","rule":"java:S2068","message":"Hard-coded password","component":"demo:src/Auth.java","line":12},{"key":"AX-bad","component":"demo:src/Auth.java"}]}`,
		"2": `{"total": 2, "issues": [{"key":"AX-2","rule":"java:S4790","message":"Weak hash","component":"demo:src/Hash.java","line":3}]}`,
	}
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("p")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	})

	issues, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo"})
	require.NoError(t, err)

	require.Len(t, rs.requests, 3, "one probe request plus exactly total page requests")
	assert.False(t, rs.requests[0].URL.Query().Has("p"))
	assert.Equal(t, "1", rs.requests[1].URL.Query().Get("p"))
	assert.Equal(t, "2", rs.requests[2].URL.Query().Get("p"))

	require.Len(t, issues, 2)
	assert.Equal(t, "AX-1", issues[0].Key)
	assert.Equal(t, "src/Auth.java", issues[0].Path)
	assert.Equal(t, 12, issues[0].LineNumber())
	assert.Equal(t, "AX-2", issues[1].Key)
	assert.Equal(t, "java:S4790", issues[1].Rule)
}

func TestSearchAll_ZeroTotalUsesFirstResponse(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0, "issues": [{"key":"AX-1","message":"m","component":"demo:a.java"}]}`)
	})

	issues, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo"})
	require.NoError(t, err)
	assert.Len(t, rs.requests, 1)
	require.Len(t, issues, 1)
	assert.Nil(t, issues[0].Line)
}

func TestSearchAll_FilterParameters(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0, "issues": []}`)
	})

	_, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo", Languages: []string{"java", "kotlin"}})
	require.NoError(t, err)

	req := rs.requests[0]
	assert.Equal(t, "/api/issues/search", req.URL.Path)
	assert.Equal(t, "demo", req.URL.Query().Get("projects"))
	assert.Equal(t, "SECURITY,RELIABILITY", req.URL.Query().Get("impactSoftwareQualities"))
	assert.Equal(t, "java,kotlin", req.URL.Query().Get("languages"))
	assert.Equal(t, "Bearer squ_test", req.Header.Get("Authorization"))
}

func TestSearchAll_FirstRequestFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"msg":"Insufficient privileges"}]}`)
	})

	_, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, []string{"Insufficient privileges"}, apiErr.Messages)
}

func TestSearchAll_PageFailureNamesPage(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("p") {
		case "", "1":
			fmt.Fprint(w, `{"total": 3, "issues": []}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	_, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2 of 3")
	assert.Len(t, rs.requests, 3, "discovery stops at the failing page")
}

func TestSearchAll_PagingTotalFallback(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"paging": {"total": 1}, "issues": [{"key":"AX-1","message":"m","component":"demo:a.java"}]}`)
	})

	issues, err := client.Issues.SearchAll(context.Background(), SearchOptions{ProjectKey: "demo"})
	require.NoError(t, err)
	assert.Len(t, rs.requests, 2)
	assert.Len(t, issues, 1)
}

func TestAddComment(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Issues.AddComment(context.Background(), "AX-1", "*Analysis* with ``code``"))

	req := rs.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/issues/add_comment", req.URL.Path)
	assert.Equal(t, map[string]string{"issue": "AX-1", "text": "*Analysis* with ``code``"}, rs.forms[0])
}

func TestAddTags(t *testing.T) {
	client, rs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tags":["false-positive"]}`)
	})

	require.NoError(t, client.Issues.AddTags(context.Background(), "AX-1", []string{"false-positive", "ai"}))
	assert.Equal(t, "/api/issues/add_tags", rs.requests[0].URL.Path)
	assert.Equal(t, map[string]string{"issue": "AX-1", "tags": "false-positive,ai"}, rs.forms[0])
}

func TestAddComment_ErrorCarriesBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "comment too long")
	})

	err := client.Issues.AddComment(context.Background(), "AX-1", "text")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "comment too long")
}
