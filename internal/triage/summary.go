package triage

import "github.com/CHXSER/sqllmcg/internal/sonarqube"

// Outcome records what happened to one issue.
type Outcome struct {
	Issue         sonarqube.Issue
	Answer        string
	FalsePositive bool
	// ConfiguredFalsePositive is set when the rule is listed in the user's false-positive rules.
	ConfiguredFalsePositive bool
	Commented               bool
	Tagged                  bool
	Skipped                 bool // dry run: the answer was not written back

	ContextErr error
	ModelErr   error
	CommentErr error
	TagErr     error
}

// Failed reports whether any step for the issue went wrong.
func (o Outcome) Failed() bool {
	return o.ModelErr != nil || o.CommentErr != nil || o.TagErr != nil
}

// Errors returns the non-nil errors in pipeline order.
func (o Outcome) Errors() []error {
	var errs []error
	for _, err := range []error{o.ContextErr, o.ModelErr, o.CommentErr, o.TagErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Discovered int
	Outcomes   []Outcome
}

// Processed is the number of issues the run reached.
func (s Summary) Processed() int { return len(s.Outcomes) }

func (s Summary) count(pred func(Outcome) bool) int {
	n := 0
	for _, o := range s.Outcomes {
		if pred(o) {
			n++
		}
	}
	return n
}

// Commented is the number of issues that received a comment.
func (s Summary) Commented() int { return s.count(func(o Outcome) bool { return o.Commented }) }

// Tagged is the number of issues tagged as false positive.
func (s Summary) Tagged() int { return s.count(func(o Outcome) bool { return o.Tagged }) }

// FalsePositives is the number of answers carrying the marker, written or not.
func (s Summary) FalsePositives() int {
	return s.count(func(o Outcome) bool { return o.FalsePositive })
}

// Failed is the number of issues with at least one failed step.
func (s Summary) Failed() int { return s.count(Outcome.Failed) }
