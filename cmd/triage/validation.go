package triage

import (
	"fmt"
	"strings"
)

// validate validates the RunOptions for the triage command.
func validate(o *RunOptions, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected positional arguments: %s", strings.Join(args, ", "))
	}
	if strings.TrimSpace(o.ProjectKey) == "" {
		return fmt.Errorf("--project-key is required")
	}
	if o.ContextLines < 0 {
		return fmt.Errorf("--context-lines cannot be negative")
	}
	if o.ReportS3Bucket != "" && o.ReportPath == "" {
		return fmt.Errorf("--report-s3-bucket requires --report")
	}
	return nil
}
