package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name. Unknown names
	// are an error; known names fall back to their built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PromptAnswer is the grounded-answer template. It must contain
// domain.ContextPlaceholder and domain.QuestionPlaceholder once each.
const PromptAnswer = "answer"
