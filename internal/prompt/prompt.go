// Package prompt renders the instruction sent to the model for one issue and recognizes the
// false-positive marker the instruction asks the model to emit.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/CHXSER/sqllmcg/internal/codecontext"
	"github.com/CHXSER/sqllmcg/internal/sonarqube"
)

// FalsePositiveMarker is the exact phrase the model must write when it judges the issue not
// to be a real defect. It is already in SonarQube bold markup.
const FalsePositiveMarker = "*FALSE POSITIVE*"

// FalsePositiveTag is applied to issues whose analysis carries the marker.
const FalsePositiveTag = "false-positive"

var markerRegex = regexp.MustCompile(`(?i)\*\s*false[\s_-]*positive\s*\*`)

// IsFalsePositive reports whether sanitized model output carries the marker. Matching is
// case-insensitive and tolerant of whitespace inside the emphasis. The model is free to ignore
// the instruction, so a miss only means no tag is added.
func IsFalsePositive(text string) bool {
	return markerRegex.MatchString(text)
}

// Input is everything a prompt depends on.
type Input struct {
	Issue              sonarqube.Issue
	Context            codecontext.CodeContext
	Model              string
	FalsePositiveRules []string
}

type templateData struct {
	Model               string
	Marker              string
	Rule                string
	Path                string
	Line                int
	Message             string
	Code                string
	Rules               []string
	AlwaysFalsePositive bool
}

const promptTemplate = `You are a cybersecurity expert analyzing a SonarQube issue.

FORMATTING RULES (SonarQube markup, not Markdown):
- For bold text put a single * on each side of the words, like this: *Bold text*
- For code put two backticks on each side of the code, like this: ` + "``CodeClass.getCode()``" + `
- Do not use Markdown headings, tables, links, triple backticks or double asterisks.

Provide ONLY a direct analysis and fix in the following format:

ANALYSIS BY: {{ .Model }}

ISSUE ANALYSIS:
- Brief description of the issue
- Whether it is a false positive or not
- If it is a false positive write {{ .Marker }} exactly like this and explain why
- If it is not a false positive, provide the fix
- Be conservative about false positives: never call it a false positive unless you are absolutely sure

CODE FIX (only when it is not a false positive):
` + "``" + `
// Your code fix here
` + "``" + `

Keep your response concise and focused only on the technical analysis and fix. Do not include any introductory text, explanations about your role, or general advice.
{{- if .Rules }}

USER CONFIGURATION:
The user declared that issues raised by the following rules are always false positives:
{{- range .Rules }}
- {{ . }}
{{- end }}
For an issue raised by one of these rules, write {{ .Marker }} without further judgment and state that the determination comes from the user configuration, not from your analysis.
{{- if .AlwaysFalsePositive }}
The issue below is raised by one of these rules.
{{- end }}
{{- end }}

Issue details:
Rule: {{ .Rule }}
File: {{ .Path }}
Line: {{ .Line }}
Message: {{ .Message }}

Code context:
` + "```" + `
{{ .Code }}
` + "```" + `
`

var tmpl = template.Must(template.New("prompt").Parse(promptTemplate))

// Build renders the prompt. It performs no I/O and identical inputs give identical output.
func Build(in Input) (string, error) {
	rules := normalize(in.FalsePositiveRules)
	data := templateData{
		Model:               in.Model,
		Marker:              FalsePositiveMarker,
		Rule:                in.Issue.Rule,
		Path:                in.Issue.Path,
		Line:                in.Issue.LineNumber(),
		Message:             in.Issue.Message,
		Code:                in.Context.String(),
		Rules:               rules,
		AlwaysFalsePositive: contains(rules, in.Issue.Rule),
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt for issue %s: %w", in.Issue.Key, err)
	}
	return b.String(), nil
}

// normalize drops blank rule ids and keeps the first occurrence of each.
func normalize(rules []string) []string {
	var out []string
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r != "" && !contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
