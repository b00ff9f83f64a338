package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHXSER/sqllmcg/internal/sonarqube"
	"github.com/CHXSER/sqllmcg/internal/triage"
)

func sampleSummary() triage.Summary {
	line := 3
	return triage.Summary{
		Discovered: 3,
		Outcomes: []triage.Outcome{
			{
				Issue:         sonarqube.Issue{Key: "AX-1", Rule: "java:S1128", Message: "Remove this unused import", Component: "demo:src/A.java", Path: "src/A.java", Line: &line},
				Answer:        "*FALSE POSITIVE* unused import.",
				FalsePositive: true,
				Commented:     true,
				Tagged:        true,
			},
			{
				Issue:     sonarqube.Issue{Key: "AX-2", Rule: "java:S2068", Message: "Hard-coded password", Component: "demo:src/B.java", Path: "src/B.java", Line: &line},
				Answer:    "Real issue.",
				Commented: true,
			},
			{
				Issue:    sonarqube.Issue{Key: "AX-3", Rule: "java:S2068", Message: "Hard-coded password", Component: "demo:src/C.java", Path: "src/C.java"},
				ModelErr: errors.New("ollama server unreachable"),
			},
		},
	}
}

func TestBuild(t *testing.T) {
	rep, err := Build(Meta{RunID: "run-1", ProjectKey: "demo", Model: "deepseek-r1:14b"}, sampleSummary())
	require.NoError(t, err)

	require.Len(t, rep.Runs, 1)
	run := rep.Runs[0]
	assert.Equal(t, "sqllmcg", run.Tool.Driver.Name)
	assert.Len(t, run.Tool.Driver.Rules, 2, "rules are shared between results")
	assert.Equal(t, "run-1", run.Properties["run_id"])
	assert.Equal(t, 1, run.Properties["tagged"])

	require.Len(t, run.Results, 3)
	first := run.Results[0]
	assert.Equal(t, "java:S1128", *first.RuleID)
	assert.Equal(t, "note", *first.Level)
	assert.Equal(t, "Remove this unused import", *first.Message.Text)
	assert.Equal(t, "AX-1", first.Properties["issue_key"])
	assert.Equal(t, true, first.Properties["tagged"])
	assert.Equal(t, "src/A.java", *first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 3, *first.Locations[0].PhysicalLocation.Region.StartLine)

	assert.Equal(t, "warning", *run.Results[1].Level)

	failed := run.Results[2]
	assert.Equal(t, "error", *failed.Level)
	assert.Nil(t, failed.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, []string{"ollama server unreachable"}, failed.Properties["errors"])
	_, hasAnalysis := failed.Properties["analysis"]
	assert.False(t, hasAnalysis)
}

func TestWrite(t *testing.T) {
	rep, err := Build(Meta{ProjectKey: "demo"}, sampleSummary())
	require.NoError(t, err)

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "triage.sarif")

		written, err := Write(rep, path, "demo")
		require.NoError(t, err)
		assert.Equal(t, path, written)

		data, err := os.ReadFile(written)
		require.NoError(t, err)
		var decoded sarif.Report
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "2.1.0", decoded.Version)
		assert.Len(t, decoded.Runs[0].Results, 3)
	})

	t.Run("folder", func(t *testing.T) {
		dir := t.TempDir()

		written, err := Write(rep, dir, "org:demo")
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(written))
		assert.Regexp(t, `^sqllmcg-triage-org_demo-.*\.sarif$`, filepath.Base(written))
		assert.FileExists(t, written)
	})
}

func TestDefaultName(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)
	assert.Equal(t, "sqllmcg-triage-my_proj-2024-05-01T10-20-30.sarif", DefaultName("my/proj", ts))
}
