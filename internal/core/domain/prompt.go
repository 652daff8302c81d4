package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholders substituted into an answer template.
const (
	ContextPlaceholder  = "{context}"
	QuestionPlaceholder = "{question}"
)

// DefaultAnswerTemplate grounds the model in the retrieved context. The
// instruction block is static: only the placeholders vary between calls.
const DefaultAnswerTemplate = `You are an expert assistant on UNESCO World Heritage Sites.
Use the following retrieved context to answer the user's question.
If you don't know the answer from the context, just say that you don't have enough information.
Your answer should be concise and directly based on the provided documents.

CONTEXT:
` + ContextPlaceholder + `

QUESTION:
` + QuestionPlaceholder

// ValidateAnswerTemplate checks that tmpl holds each placeholder exactly
// once, with the context before the question.
func ValidateAnswerTemplate(tmpl string) error {
	for _, p := range []string{ContextPlaceholder, QuestionPlaceholder} {
		if n := strings.Count(tmpl, p); n != 1 {
			return fmt.Errorf("%w: answer template must contain %s once, found %d", ErrInvalidInput, p, n)
		}
	}
	if strings.Index(tmpl, ContextPlaceholder) > strings.Index(tmpl, QuestionPlaceholder) {
		return fmt.Errorf("%w: answer template must place %s before %s",
			ErrInvalidInput, ContextPlaceholder, QuestionPlaceholder)
	}
	return nil
}

// reasoningBlock matches the <think> sections reasoning models emit before
// their answer. An unterminated block runs to the end of the text.
var reasoningBlock = regexp.MustCompile(`(?s)<think>.*?(</think>|$)`)

// StripReasoning removes reasoning blocks from model output and trims the
// remaining answer.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningBlock.ReplaceAllString(text, ""))
}
