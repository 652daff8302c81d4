package mcp

import (
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer produces grounded answers.
	Answer driving.AnswerService

	// Retriever returns ranked passages.
	Retriever driving.RetrieverService

	// Countries lists filter values. Optional.
	Countries driving.CountryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Retriever == nil {
		return ErrMissingRetrieverService
	}
	return nil
}
