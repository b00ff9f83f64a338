// Package report exports the outcome of a triage run as a SARIF log.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/CHXSER/sqllmcg/internal/triage"
	"github.com/CHXSER/sqllmcg/pkg/shared/files"
)

const (
	toolName           = "sqllmcg"
	toolInformationURI = "https://github.com/CHXSER/sqllmcg"
	nameTemplate       = "sqllmcg-triage-%s-%s.sarif"
)

// Meta describes the run a report belongs to.
type Meta struct {
	RunID      string
	ProjectKey string
	Model      string
	SonarHost  string
	DryRun     bool
}

// Build converts a run summary into a SARIF report with one result per processed issue.
func Build(meta Meta, summary triage.Summary) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	run.Properties = map[string]interface{}{
		"run_id":      meta.RunID,
		"project_key": meta.ProjectKey,
		"model":       meta.Model,
		"sonar_host":  meta.SonarHost,
		"dry_run":     meta.DryRun,
		"discovered":  summary.Discovered,
		"processed":   summary.Processed(),
		"commented":   summary.Commented(),
		"tagged":      summary.Tagged(),
		"failed":      summary.Failed(),
	}

	for _, o := range summary.Outcomes {
		rule := run.AddRule(o.Issue.Rule).WithDescription(o.Issue.Rule)

		physical := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(o.Issue.Path))
		if line := o.Issue.LineNumber(); line > 0 {
			physical = physical.WithRegion(sarif.NewRegion().WithStartLine(line))
		}
		location := sarif.NewLocation().WithPhysicalLocation(physical)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(o.Issue.Message)).
			WithLevel(level(o)).
			WithLocations([]*sarif.Location{location})

		result.Properties = map[string]interface{}{
			"issue_key":      o.Issue.Key,
			"component":      o.Issue.Component,
			"false_positive": o.FalsePositive,
			"configured_fp":  o.ConfiguredFalsePositive,
			"commented":      o.Commented,
			"tagged":         o.Tagged,
		}
		if o.Answer != "" {
			result.Properties["analysis"] = o.Answer
		}
		if errs := o.Errors(); len(errs) > 0 {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, e.Error())
			}
			result.Properties["errors"] = msgs
		}
		run.AddResult(result)
	}
	report.AddRun(run)

	return report, nil
}

// level maps an outcome to a SARIF level: notes for false positives, errors for issues the
// run could not complete.
func level(o triage.Outcome) string {
	switch {
	case o.Failed():
		return "error"
	case o.FalsePositive:
		return "note"
	default:
		return "warning"
	}
}

// DefaultName returns the file name used when the report path is a folder.
func DefaultName(projectKey string, t time.Time) string {
	key := strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(projectKey)
	return fmt.Sprintf(nameTemplate, key, t.Format("2006-01-02T15-04-05"))
}

// Write stores report at path. A folder path (existing, or without extension) receives a file
// named after the project and the current time. It returns the path written.
func Write(report *sarif.Report, path, projectKey string) (string, error) {
	fullPath, folder, err := files.DetermineFileFullPath(path, DefaultName(projectKey, time.Now()))
	if err != nil {
		return "", err
	}
	if err := files.CreateFolderIfNotExists(folder); err != nil {
		return "", err
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := report.PrettyWrite(file); err != nil {
		return "", fmt.Errorf("error writing SARIF report: %w", err)
	}
	return fullPath, nil
}
