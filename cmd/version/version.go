package version

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CHXSER/sqllmcg/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds build information injected with -ldflags.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
	HomeFolder    string `json:"home_folder,omitempty"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(os.Stdout, currentVersions(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}

func currentVersions() Versions {
	v := Versions{
		Version:       CoreVersion,
		GolangVersion: GolangVersion,
		BuildTime:     BuildTime,
	}
	if AppConfig != nil {
		v.HomeFolder = config.GetHome(AppConfig)
	}
	return v
}

// printVersionInfo prints the version information.
func printVersionInfo(w io.Writer, v Versions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", v.Version)
	fmt.Fprintf(w, "Go Version: %s\n", v.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", v.BuildTime)
	if v.HomeFolder != "" {
		fmt.Fprintf(w, "Home Folder: %s\n", v.HomeFolder)
	}
	return nil
}
