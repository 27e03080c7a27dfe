package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/gitscope/gitscope/internal/git"
)

// DiffTokenBudget caps how much patch text goes into a prompt. Large
// diffs get truncated rather than rejected.
const DiffTokenBudget = 6000

// promptEncoding is the tiktoken encoding used for budgeting.
const promptEncoding = "cl100k_base"

// TruncateToTokenBudget cuts text down to roughly budget tokens. Short
// inputs are returned untouched without initializing the tokenizer.
// When the encoding cannot be loaded, a conservative byte cut (4 bytes
// per token) is used instead.
func TruncateToTokenBudget(text string, budget int) string {
	if budget <= 0 {
		budget = DiffTokenBudget
	}
	// A token is ~4 bytes of source text; anything under 3 bytes per
	// token is certain to fit.
	if len(text) <= budget*3 {
		return text
	}

	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return byteCut(text, budget*4)
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= budget {
		return text
	}
	return enc.Decode(ids[:budget]) + "\n\n[... diff truncated ...]"
}

func byteCut(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	// Back off a partial multibyte rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "\n\n[... diff truncated ...]"
}

// languageDirective tells the model which language the report must use.
func languageDirective(language string) string {
	if language == "" {
		language = "english"
	}
	return fmt.Sprintf("Write the entire response in %s.", language)
}

// CommitAnalysisPrompt builds the system and user messages for a single
// commit analysis.
func CommitAnalysisPrompt(c git.Commit, files []string, diff, language string) (system, user string) {
	system = strings.Join([]string{
		"You are a senior engineer reviewing a git commit.",
		"Explain what changed, why it likely changed, and any risks or follow-ups.",
		"Be concrete and reference file names from the diff.",
		languageDirective(language),
	}, " ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Commit %s by %s <%s> on %s\n", c.Hash, c.Author, c.Email, c.Date)
	fmt.Fprintf(&sb, "Subject: %s\n\n", c.Subject)
	if len(files) > 0 {
		sb.WriteString("Files changed:\n")
		for _, f := range files {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Diff:\n```\n")
	sb.WriteString(TruncateToTokenBudget(diff, DiffTokenBudget))
	sb.WriteString("\n```\n")
	return system, sb.String()
}

// ProjectSummaryPrompt builds the system and user messages for a
// project-level summary over a pre-assembled commit digest.
func ProjectSummaryPrompt(digest string, commitCount int, language string) (system, user string) {
	system = strings.Join([]string{
		"You are a senior engineer summarizing recent development activity in a git repository.",
		"Identify themes, notable changes, and the overall direction of the work.",
		languageDirective(language),
	}, " ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the following %d most recent commits (newest first):\n\n", commitCount)
	sb.WriteString(TruncateToTokenBudget(digest, 2*DiffTokenBudget))
	return system, sb.String()
}
