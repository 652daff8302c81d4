package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about World Heritage Sites"`
	Country  string `json:"country,omitempty" jsonschema:"only use sites in this country (exact name, e.g. France)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query   string `json:"query" jsonschema:"text to find similar passages for"`
	Country string `json:"country,omitempty" jsonschema:"only return passages about sites in this country"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	SiteName string  `json:"site_name"`
	Country  string  `json:"country"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// CountriesOutput is the output schema for the list_countries tool.
type CountriesOutput struct {
	Countries []string `json:"countries"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about UNESCO World Heritage Sites from indexed Wikipedia articles",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed passages most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Countries != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_countries",
			Description: "List the countries that can be used as a filter",
		}, s.handleListCountries)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, input.Question, domain.FilterFromCountry(input.Country))
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer.Text, Sources: answer.Sources}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	hits, err := s.ports.Retriever.Search(ctx, input.Query, domain.FilterFromCountry(input.Country))
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(hits)),
		Count:    len(hits),
	}
	for i, h := range hits {
		p := h.Record.Payload
		output.Passages[i] = PassageOutput{
			SiteName: p.SiteName,
			Country:  p.Country,
			URL:      p.SourceURL,
			Score:    h.Score,
			Text:     p.Text,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListCountries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, CountriesOutput, error) {
	countries, err := s.ports.Countries.ListCountries(ctx)
	if err != nil {
		return nil, CountriesOutput{}, err
	}
	return nil, CountriesOutput{Countries: countries}, nil
}
