package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for heritage resources.
	uriScheme = "heritage://"

	countriesURI = uriScheme + "countries"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         countriesURI,
		Name:        "countries",
		Description: "Countries with indexed World Heritage Sites",
		MIMEType:    "application/json",
	}, s.handleCountriesResource)
}

// handleCountriesResource returns the filterable countries as a JSON array.
func (s *Server) handleCountriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	countries := []string{}
	if s.ports.Countries != nil {
		listed, err := s.ports.Countries.ListCountries(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing countries: %w", err)
		}
		countries = listed
	}

	data, err := json.MarshalIndent(countries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling countries: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
