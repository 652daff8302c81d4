// Package mcp provides an MCP (Model Context Protocol) server adapter for
// heritage. It lets AI assistants ask grounded questions about World
// Heritage Sites and pull retrieved passages into their own context.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrMissingRetrieverService is returned when the retriever service is not provided.
	ErrMissingRetrieverService = errors.New("mcp: retriever service is required")
)
