package httpapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

var validate = validator.New()

// Filters narrows retrieval to a subset of sites.
type Filters struct {
	Country string `json:"country" validate:"omitempty,max=200"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string  `json:"question" validate:"required,max=4000"`
	Filters  Filters `json:"filters"`
}

// AskResponse is the body of a successful POST /ask.
type AskResponse struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

// RetrieveRequest is the body of POST /retrieve.
type RetrieveRequest struct {
	Query   string  `json:"query" validate:"required,max=4000"`
	Filters Filters `json:"filters"`
}

// Passage is one ranked hit in a RetrieveResponse.
type Passage struct {
	SiteName string  `json:"site_name"`
	Country  string  `json:"country"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// RetrieveResponse is the body of a successful POST /retrieve.
type RetrieveResponse struct {
	Context  string    `json:"context"`
	Passages []Passage `json:"passages"`
}

// FiltersResponse is the body of GET /get_filters.
type FiltersResponse struct {
	Countries []string `json:"countries"`
}

// validationMessage flattens validator errors into one message, field by field.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s' tag", e.Namespace(), e.Tag()))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
