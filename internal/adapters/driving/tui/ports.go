// Package tui provides an interactive terminal user interface for asking
// questions about World Heritage sites. It is a driving adapter over the
// answer and country services.
package tui

import (
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer answers questions.
	Answer driving.AnswerService

	// Countries lists the countries available as filters. Optional; without
	// it the country filter is disabled.
	Countries driving.CountryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, countries driving.CountryService) *Ports {
	return &Ports{
		Answer:    answer,
		Countries: countries,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
