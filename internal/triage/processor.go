// Package triage runs the per-issue remediation loop: context, prompt, model, write-back.
package triage

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/CHXSER/sqllmcg/internal/codecontext"
	"github.com/CHXSER/sqllmcg/internal/ollama"
	"github.com/CHXSER/sqllmcg/internal/prompt"
	"github.com/CHXSER/sqllmcg/internal/settings"
	"github.com/CHXSER/sqllmcg/internal/sonarqube"
)

// ContextExtractor builds the code context of an issue.
type ContextExtractor interface {
	Extract(ctx context.Context, issue sonarqube.Issue) (codecontext.CodeContext, error)
}

// Generator asks a model for an answer.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Processor triages issues one at a time. A failure on one issue is logged and recorded in
// its Outcome; the loop moves on to the next issue.
type Processor struct {
	Settings  settings.Settings
	Extractor ContextExtractor
	Generator Generator
	Applier   *Applier
	Logger    hclog.Logger
	DryRun    bool
}

// Run processes issues in order. It stops before the next issue once ctx is done.
func (p *Processor) Run(ctx context.Context, issues []sonarqube.Issue) Summary {
	summary := Summary{Discovered: len(issues)}
	for i, issue := range issues {
		if err := ctx.Err(); err != nil {
			p.Logger.Warn("run interrupted", "processed", i, "remaining", len(issues)-i, "error", err)
			break
		}
		p.Logger.Info("processing issue", "issue", issue.Key, "rule", issue.Rule, "index", i+1, "total", len(issues))
		summary.Outcomes = append(summary.Outcomes, p.Process(ctx, issue))
	}
	return summary
}

// Process triages a single issue.
func (p *Processor) Process(ctx context.Context, issue sonarqube.Issue) Outcome {
	lg := p.Logger.With("issue", issue.Key)
	out := Outcome{Issue: issue, ConfiguredFalsePositive: p.Settings.IsAlwaysFalsePositive(issue.Rule)}
	if out.ConfiguredFalsePositive {
		lg.Debug("rule is configured as always false positive", "rule", issue.Rule)
	}

	codeCtx, err := p.Extractor.Extract(ctx, issue)
	if err != nil {
		lg.Warn("code context unavailable", "error", err)
		out.ContextErr = err
		codeCtx = codecontext.Placeholder(codecontext.PlaceholderUnavailable)
	}

	text, err := prompt.Build(prompt.Input{
		Issue:              issue,
		Context:            codeCtx,
		Model:              p.Settings.Model,
		FalsePositiveRules: p.Settings.FalsePositiveRules,
	})
	if err != nil {
		lg.Error("failed to build prompt", "error", err)
		out.ModelErr = err
		return out
	}

	raw, err := p.Generator.Generate(ctx, p.Settings.Model, text)
	if err != nil {
		lg.Error("model call failed", "model", p.Settings.Model, "error", err)
		out.ModelErr = err
		return out
	}

	out.Answer = ollama.Sanitize(raw)
	out.FalsePositive = prompt.IsFalsePositive(out.Answer)

	if p.DryRun {
		lg.Info("dry run, answer not written", "false_positive", out.FalsePositive)
		lg.Debug("sanitized answer", "text", out.Answer)
		out.Skipped = true
		return out
	}

	applied := p.Applier.Apply(ctx, issue.Key, out.Answer)
	out.Commented = applied.Commented
	out.Tagged = applied.Tagged
	out.CommentErr = applied.CommentErr
	out.TagErr = applied.TagErr
	return out
}

// LogSummary writes the final counters of a run.
func LogSummary(logger hclog.Logger, s Summary) {
	logger.Info("triage finished",
		"discovered", s.Discovered,
		"processed", s.Processed(),
		"commented", s.Commented(),
		"tagged", s.Tagged(),
		"false_positives", s.FalsePositives(),
		"failed", s.Failed(),
	)
}
