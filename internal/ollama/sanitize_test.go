package ollama

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "reasoning block removed",
			in:   "<think>Let me check the import...</think>Issue looks fine. *false positive* - unused import.",
			want: "Issue looks fine. *false positive* - unused import.",
		},
		{
			name: "multiline thinking tag, any case",
			in:   "<Thinking>\nstep 1\nstep 2\n</THINKING>\n\nANALYSIS BY: m",
			want: "ANALYSIS BY: m",
		},
		{
			name: "nested blocks",
			in:   "<think>a<think>b</think>c</think>answer",
			want: "answer",
		},
		{
			name: "closing tag without opener drops the prefix",
			in:   "reasoning leaked here</think>\nThe fix is below.",
			want: "The fix is below.",
		},
		{
			name: "unterminated block drops the rest",
			in:   "Answer first.<think>never closed",
			want: "Answer first.",
		},
		{
			name: "spliced tag is removed too",
			in:   "<thi<think>x</think>nk>hidden</think>shown",
			want: "shown",
		},
		{
			name: "fence with language becomes double backtick",
			in:   "CODE FIX:\n```java\nString pwd = System.getenv(\"PWD\");\n```",
			want: "CODE FIX:\n``\nString pwd = System.getenv(\"PWD\");\n``",
		},
		{
			name: "adjacent fences collapse fully",
			in:   "```a```",
			want: "``",
		},
		{
			name: "double asterisks become single",
			in:   "**Bold** and ***very bold***",
			want: "*Bold* and *very bold*",
		},
		{
			name: "double backtick code span untouched",
			in:   "Use ``MessageDigest.getInstance(\"SHA-256\")``",
			want: "Use ``MessageDigest.getInstance(\"SHA-256\")``",
		},
		{
			name: "whitespace trimmed",
			in:   "\n\t  text  \n",
			want: "text",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

var sanitizeFragments = []string{
	"<think>", "</think>", "<thinking>", "</THINKING>", "<thi", "nk>", "</", "<",
	"`", "``", "```", "```java", "*", "**", "***", " ", "\n", "\t",
	"text", "java", "FALSE POSITIVE",
}

func TestSanitize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		var b strings.Builder
		n := rng.Intn(16)
		for j := 0; j < n; j++ {
			b.WriteString(sanitizeFragments[rng.Intn(len(sanitizeFragments))])
		}
		in := b.String()

		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize is not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
		if reasoningTagRegex.MatchString(once) {
			t.Fatalf("reasoning tag survived in %q (input %q)", once, in)
		}
	}
}

func FuzzSanitize(f *testing.F) {
	for _, seed := range []string{
		"<think>x</think>y",
		"</think><think>",
		"```go\ncode\n```",
		"****",
		"<thi<think>x</think>nk>",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := Sanitize(in)
		if twice := Sanitize(once); once != twice {
			t.Errorf("Sanitize(%q) = %q, Sanitize again = %q", in, once, twice)
		}
	})
}
