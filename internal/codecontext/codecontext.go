// Package codecontext slices the source lines around a reported issue line.
package codecontext

import (
	"context"
	"fmt"
	"strings"

	"github.com/CHXSER/sqllmcg/internal/sonarqube"
)

// DefaultHalfWidth is the number of lines shown on each side of the issue line.
const DefaultHalfWidth = 10

const (
	PlaceholderNoSource    = "no source available"
	PlaceholderEmptyFile   = "file is empty"
	PlaceholderUnavailable = "no code context available"
)

// SourceFetcher returns the raw text of a file given its component key.
type SourceFetcher interface {
	Raw(ctx context.Context, componentKey string) (string, error)
}

// Line is one annotated source line.
type Line struct {
	Number int
	Text   string
}

// CodeContext is either a window of lines or a placeholder explaining why there is none.
type CodeContext struct {
	Lines       []Line
	IssueLine   int
	Placeholder string
}

// Placeholder returns a context holding only msg.
func Placeholder(msg string) CodeContext {
	return CodeContext{Placeholder: msg}
}

// String renders the window with the issue line marked by ">>".
func (c CodeContext) String() string {
	if len(c.Lines) == 0 {
		return c.Placeholder
	}
	var b strings.Builder
	for i, l := range c.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		marker := "  "
		if l.Number == c.IssueLine {
			marker = ">>"
		}
		fmt.Fprintf(&b, "%s %d: %s", marker, l.Number, l.Text)
	}
	return b.String()
}

// ComponentKey returns the SonarQube component key of path within projectKey. A path that
// already carries the project prefix is used unchanged.
func ComponentKey(projectKey, path string) string {
	if projectKey != "" && strings.HasPrefix(path, projectKey+":") {
		return path
	}
	clean := strings.TrimLeft(path, "/:")
	if projectKey == "" {
		return clean
	}
	return projectKey + ":" + clean
}

// SplitLines splits content into lines, ignoring one trailing newline and any carriage returns.
func SplitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\r")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Window returns up to halfWidth lines on each side of line (1-based) in content.
// It never fails: unusable input yields a placeholder.
func Window(content string, line, halfWidth int) CodeContext {
	if content == "" {
		return Placeholder(PlaceholderNoSource)
	}
	lines := SplitLines(content)
	if len(lines) == 0 {
		return Placeholder(PlaceholderEmptyFile)
	}
	if line <= 0 || line > len(lines) {
		return Placeholder(fmt.Sprintf("invalid line number: %d", line))
	}
	if halfWidth < 0 {
		halfWidth = 0
	}

	start := line - 1 - halfWidth
	if start < 0 {
		start = 0
	}
	end := line + halfWidth
	if end > len(lines) {
		end = len(lines)
	}

	ctx := CodeContext{IssueLine: line, Lines: make([]Line, 0, end-start)}
	for i := start; i < end; i++ {
		ctx.Lines = append(ctx.Lines, Line{Number: i + 1, Text: lines[i]})
	}
	return ctx
}

// Extractor fetches sources and builds windows for issues of one project.
type Extractor struct {
	Sources    SourceFetcher
	ProjectKey string
	HalfWidth  int
}

// Extract returns the context of issue. A fetch failure is returned as an error so the caller
// can decide on a fallback.
func (e *Extractor) Extract(ctx context.Context, issue sonarqube.Issue) (CodeContext, error) {
	key := ComponentKey(e.ProjectKey, issue.Path)
	content, err := e.Sources.Raw(ctx, key)
	if err != nil {
		return CodeContext{}, fmt.Errorf("failed to fetch source %s: %w", key, err)
	}
	return Window(content, issue.LineNumber(), e.HalfWidth), nil
}
