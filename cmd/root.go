package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CHXSER/sqllmcg/cmd/triage"
	"github.com/CHXSER/sqllmcg/cmd/version"
	"github.com/CHXSER/sqllmcg/pkg/shared/config"
	scerrors "github.com/CHXSER/sqllmcg/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "sqllmcg [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "sqllmcg triages SonarQube issues with a local LLM.",
		Long: `sqllmcg pulls security and reliability issues from a SonarQube project, asks a model
served by Ollama whether each one is real, and writes the analysis back as an issue comment.
Issues the model judges to be false positives are tagged "false-positive".`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml when present)")
	rootCmd.AddCommand(triage.TriageCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *scerrors.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	required := cfgFile != ""
	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile, required)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
		os.Exit(scerrors.ExitCodeInvalidArgs)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(scerrors.ExitCodeInvalidArgs)
	}

	triage.Init(AppConfig)
	version.Init(AppConfig)
}
