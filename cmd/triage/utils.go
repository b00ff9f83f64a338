package triage

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	cmdutil "github.com/CHXSER/sqllmcg/internal/cmd"
	"github.com/CHXSER/sqllmcg/internal/report"
	"github.com/CHXSER/sqllmcg/internal/settings"
	itriage "github.com/CHXSER/sqllmcg/internal/triage"
)

// overridesFromFlags keeps only the values set explicitly, so flag defaults never shadow the
// persisted settings.
func overridesFromFlags(flags *pflag.FlagSet, o *RunOptions) settings.Overrides {
	return settings.Overrides{
		SonarHost:          cmdutil.StringIfChanged(flags, "sonar-host", o.SonarHost),
		OllamaURL:          cmdutil.StringIfChanged(flags, "ollama-url", o.OllamaURL),
		Token:              cmdutil.StringIfChanged(flags, "token", o.Token),
		Model:              cmdutil.StringIfChanged(flags, "model", o.Model),
		FalsePositiveRules: o.FalsePositiveRules,
	}
}

// newUploader is swapped in tests.
var newUploader = func(o RunOptions, lg hclog.Logger) (reportUploader, error) {
	return report.NewS3Uploader(o.ReportS3Bucket, o.ReportS3Region, o.ReportS3Prefix, lg)
}

type reportUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// writeReport stores the SARIF report of the run and uploads it when a bucket is configured.
func writeReport(ctx context.Context, runID string, o RunOptions, set settings.Settings, summary itriage.Summary, lg hclog.Logger) error {
	rep, err := report.Build(report.Meta{
		RunID:      runID,
		ProjectKey: o.ProjectKey,
		Model:      set.Model,
		SonarHost:  set.SonarHost,
		DryRun:     o.DryRun,
	}, summary)
	if err != nil {
		lg.Error("failed to build report", "error", err)
		return err
	}

	path, err := report.Write(rep, o.ReportPath, o.ProjectKey)
	if err != nil {
		lg.Error("failed to write report", "path", o.ReportPath, "error", err)
		return fmt.Errorf("failed to write report: %w", err)
	}
	lg.Info("report written", "path", path)

	if o.ReportS3Bucket == "" {
		return nil
	}
	up, err := newUploader(o, lg.Named("s3"))
	if err != nil {
		lg.Error("failed to set up report upload", "error", err)
		return err
	}
	if _, err := up.Upload(ctx, path); err != nil {
		lg.Error("failed to upload report", "bucket", o.ReportS3Bucket, "error", err)
		return err
	}
	return nil
}
