package triage

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/CHXSER/sqllmcg/internal/prompt"
)

// IssueWriter posts results back to the quality server.
type IssueWriter interface {
	AddComment(ctx context.Context, issueKey, text string) error
	AddTags(ctx context.Context, issueKey string, tags []string) error
}

// Applier writes one sanitized analysis to an issue.
type Applier struct {
	Writer IssueWriter
	Logger hclog.Logger
}

// Applied reports which writes succeeded for one issue.
type Applied struct {
	Commented     bool
	Tagged        bool
	FalsePositive bool
	CommentErr    error
	TagErr        error
}

// Apply comments with text and, when text carries the false-positive marker, tags the issue.
// The two writes are independent: a failed comment does not prevent the tag and vice versa.
func (a *Applier) Apply(ctx context.Context, issueKey, text string) Applied {
	res := Applied{FalsePositive: prompt.IsFalsePositive(text)}

	if err := a.Writer.AddComment(ctx, issueKey, text); err != nil {
		res.CommentErr = fmt.Errorf("failed to add comment: %w", err)
		a.Logger.Error("failed to add comment", "issue", issueKey, "error", err)
	} else {
		res.Commented = true
		a.Logger.Info("comment added", "issue", issueKey)
	}

	if !res.FalsePositive {
		return res
	}
	if err := a.Writer.AddTags(ctx, issueKey, []string{prompt.FalsePositiveTag}); err != nil {
		res.TagErr = fmt.Errorf("failed to add tag: %w", err)
		a.Logger.Error("failed to add tag", "issue", issueKey, "tag", prompt.FalsePositiveTag, "error", err)
	} else {
		res.Tagged = true
		a.Logger.Info("issue tagged", "issue", issueKey, "tag", prompt.FalsePositiveTag)
	}
	return res
}
