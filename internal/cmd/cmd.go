// Package cmd holds helpers shared by the cobra commands.
package cmd

import "github.com/spf13/pflag"

// HasFlags reports whether any flag was set on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	found := false
	flags.Visit(func(*pflag.Flag) {
		found = true
	})
	return found
}

// StringIfChanged returns a pointer to value when the named flag was set explicitly, nil otherwise.
func StringIfChanged(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}
