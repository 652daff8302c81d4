package services

import (
	"strings"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Assembler renders the grounded prompt handed to the language model.
// The instruction block never depends on whether the context is empty.
type Assembler struct {
	prompts driven.PromptStore
}

// NewAssembler creates an assembler. With a nil store, or when the store's
// template is unusable, domain.DefaultAnswerTemplate is used.
func NewAssembler(prompts driven.PromptStore) *Assembler {
	return &Assembler{prompts: prompts}
}

// Assemble substitutes context and question into the answer template.
// Placeholders inside the substituted values are left as they are.
func (a *Assembler) Assemble(context, question string) string {
	tmpl := a.template()

	ci := strings.Index(tmpl, domain.ContextPlaceholder)
	qi := strings.Index(tmpl, domain.QuestionPlaceholder)

	var b strings.Builder
	b.Grow(len(tmpl) + len(context) + len(question))
	b.WriteString(tmpl[:ci])
	b.WriteString(context)
	b.WriteString(tmpl[ci+len(domain.ContextPlaceholder) : qi])
	b.WriteString(question)
	b.WriteString(tmpl[qi+len(domain.QuestionPlaceholder):])
	return b.String()
}

func (a *Assembler) template() string {
	if a.prompts == nil {
		return domain.DefaultAnswerTemplate
	}
	tmpl, err := a.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Warn("load answer prompt: %v", err)
		return domain.DefaultAnswerTemplate
	}
	if err := domain.ValidateAnswerTemplate(tmpl); err != nil {
		logger.Warn("answer prompt: %v", err)
		return domain.DefaultAnswerTemplate
	}
	return tmpl
}
