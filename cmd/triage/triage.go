package triage

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	cmdutil "github.com/CHXSER/sqllmcg/internal/cmd"
	"github.com/CHXSER/sqllmcg/internal/codecontext"
	"github.com/CHXSER/sqllmcg/internal/ollama"
	"github.com/CHXSER/sqllmcg/internal/report"
	"github.com/CHXSER/sqllmcg/internal/settings"
	"github.com/CHXSER/sqllmcg/internal/sonarqube"
	itriage "github.com/CHXSER/sqllmcg/internal/triage"
	"github.com/CHXSER/sqllmcg/pkg/shared/config"
	"github.com/CHXSER/sqllmcg/pkg/shared/errors"
	"github.com/CHXSER/sqllmcg/pkg/shared/logger"
)

// RunOptions holds flags for the triage command.
type RunOptions struct {
	ProjectKey         string   `json:"project_key,omitempty"`
	SonarHost          string   `json:"sonar_host,omitempty"`
	OllamaURL          string   `json:"ollama_url,omitempty"`
	Token              string   `json:"-"`
	Model              string   `json:"model,omitempty"`
	FalsePositiveRules []string `json:"false_positive_rules,omitempty"`
	Languages          []string `json:"languages,omitempty"`
	ContextLines       int      `json:"context_lines"`
	DryRun             bool     `json:"dry_run,omitempty"`
	ReportPath         string   `json:"report_path,omitempty"`
	ReportS3Bucket     string   `json:"report_s3_bucket,omitempty"`
	ReportS3Region     string   `json:"report_s3_region,omitempty"`
	ReportS3Prefix     string   `json:"report_s3_prefix,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleTriageUsage = `  # First run: store the SonarQube token, it is reused afterwards
  sqllmcg triage --project-key my-service --token squ_xxx

  # Use another model and declare rules that are always false positives
  sqllmcg triage --project-key my-service --model qwen2.5-coder:14b --false-positive-rule java:S1128 --false-positive-rule java:S125

  # Only Java issues, wider code context, no writes to SonarQube
  sqllmcg triage --project-key my-service --languages java --context-lines 20 --dry-run

  # Keep a SARIF record of the run and upload it to S3
  sqllmcg triage --project-key my-service --report ./reports --report-s3-bucket triage-reports`

	// TriageCmd represents the command that analyses SonarQube issues with a model.
	TriageCmd = &cobra.Command{
		Use:                   "triage --project-key KEY [--sonar-host URL] [--ollama-url URL] [--token TOKEN] [--model MODEL] [--false-positive-rule RULE...] [--languages LANG[,LANG...]] [--context-lines N] [--dry-run] [--report PATH] [--report-s3-bucket BUCKET]",
		Short:                 "Analyse SonarQube issues with a model and comment the results",
		Example:               exampleTriageUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runTriage,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runTriage is the main execution function for the triage command.
func runTriage(cmd *cobra.Command, args []string) error {
	// 1. Check for help request
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	// 2. Initialize logger with a run id
	runID := uuid.New().String()
	lg := logger.NewLogger(AppConfig, "triage").With("run_id", runID)

	// 3. Validate arguments
	if err := validate(&opts, args); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.Errorf(opts, errors.ExitCodeInvalidArgs, "invalid arguments: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := run(ctx, runID, opts, overridesFromFlags(cmd.Flags(), &opts), lg)
	return err
}

// run resolves settings, discovers issues and triages them. Fatal failures are returned as
// CommandError carrying the exit code.
func run(ctx context.Context, runID string, o RunOptions, overrides settings.Overrides, lg hclog.Logger) (itriage.Summary, error) {
	// 1. Resolve and persist settings
	store := settings.NewStore(config.GetSettingsPath(AppConfig), lg.Named("settings"))
	set, err := settings.Resolve(store, overrides)
	if err != nil {
		lg.Error("failed to resolve settings", "error", err)
		return itriage.Summary{}, errors.Errorf(o, errors.ExitCodeInvalidArgs, "failed to resolve settings: %w", err)
	}
	if err := set.Validate(); err != nil {
		lg.Error("invalid settings", "error", err)
		return itriage.Summary{}, errors.Errorf(o, errors.ExitCodeInvalidArgs, "invalid settings: %w", err)
	}
	lg.Info("settings resolved", "sonar_host", set.SonarHost, "ollama_url", set.OllamaURL, "model", set.Model, "settings_file", store.Path)

	// 2. Discover issues
	sonar := sonarqube.New(AppConfig, lg.Named("sonarqube"), set.SonarHost, set.Token)
	issues, err := sonar.Issues.SearchAll(ctx, sonarqube.SearchOptions{
		ProjectKey: o.ProjectKey,
		Languages:  o.Languages,
	})
	if err != nil {
		lg.Error("issue discovery failed", "project", o.ProjectKey, "error", err)
		return itriage.Summary{}, errors.Errorf(o, errors.ExitCodeDiscovery, "issue discovery failed: %w", err)
	}
	lg.Info("issues discovered", "project", o.ProjectKey, "count", len(issues))

	// 3. Triage every issue
	processor := &itriage.Processor{
		Settings: set,
		Extractor: &codecontext.Extractor{
			Sources:    sonar.Sources,
			ProjectKey: o.ProjectKey,
			HalfWidth:  o.ContextLines,
		},
		Generator: ollama.New(AppConfig, lg.Named("ollama"), set.OllamaURL),
		Applier:   &itriage.Applier{Writer: sonar.Issues, Logger: lg},
		Logger:    lg,
		DryRun:    o.DryRun,
	}
	summary := processor.Run(ctx, issues)
	itriage.LogSummary(lg, summary)

	// 4. Optional report
	if o.ReportPath != "" {
		if err := writeReport(ctx, runID, o, set, summary, lg); err != nil {
			return summary, errors.NewCommandError(o, err, errors.ExitCodeReport)
		}
	}

	fmt.Printf("Processed %d of %d issue(s): %d commented, %d tagged as false positive, %d failed\n",
		summary.Processed(), summary.Discovered, summary.Commented(), summary.Tagged(), summary.Failed())
	return summary, nil
}

func init() {
	TriageCmd.Flags().StringVar(&opts.ProjectKey, "project-key", "", "SonarQube project key")
	TriageCmd.Flags().StringVar(&opts.SonarHost, "sonar-host", settings.DefaultSonarHost, "SonarQube server URL (persisted)")
	TriageCmd.Flags().StringVar(&opts.OllamaURL, "ollama-url", settings.DefaultOllamaURL, "Ollama server URL (persisted)")
	TriageCmd.Flags().StringVar(&opts.Token, "token", "", "SonarQube user token (persisted)")
	TriageCmd.Flags().StringVar(&opts.Model, "model", settings.DefaultModel, "Ollama model used for the analysis (persisted)")
	// --false-positive-rule supports multiple usages or comma-separated values
	TriageCmd.Flags().StringSliceVar(&opts.FalsePositiveRules, "false-positive-rule", nil, "Rule id whose issues are always false positives (repeat flag or use comma-separated values, persisted)")
	TriageCmd.Flags().StringSliceVar(&opts.Languages, "languages", nil, "Optional: restrict discovery to these languages, e.g. java,py")
	TriageCmd.Flags().IntVar(&opts.ContextLines, "context-lines", codecontext.DefaultHalfWidth, "Number of source lines shown on each side of the issue line")
	TriageCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Analyse issues without writing comments or tags")
	TriageCmd.Flags().StringVar(&opts.ReportPath, "report", "", "Optional: write a SARIF report of the run to this file or folder")
	TriageCmd.Flags().StringVar(&opts.ReportS3Bucket, "report-s3-bucket", "", "Optional: upload the SARIF report to this S3 bucket")
	TriageCmd.Flags().StringVar(&opts.ReportS3Region, "report-s3-region", report.DefaultRegion, "Region of the report bucket")
	TriageCmd.Flags().StringVar(&opts.ReportS3Prefix, "report-s3-prefix", "", "Optional: key prefix for the uploaded report")
	TriageCmd.Flags().BoolP("help", "h", false, "Show help for triage command.")
}
