package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Handler serves the question answering endpoints.
type Handler struct {
	ports *Ports
}

// NewHandler creates a handler over ports.
func NewHandler(ports *Ports) *Handler {
	return &Handler{ports: ports}
}

// HandleAsk answers a question from the indexed articles.
func (h *Handler) HandleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrBadRequest()
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return ErrNoQuestion()
	}
	if err := validate.Struct(&req); err != nil {
		return NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	answer, err := h.ports.Answer.Ask(c.UserContext(), req.Question, domain.FilterFromCountry(req.Filters.Country))
	if err != nil {
		return err
	}

	return c.JSON(AskResponse{Answer: answer.Text, Sources: answer.Sources})
}

// HandleRetrieve returns the grounding context and ranked passages for a query.
func (h *Handler) HandleRetrieve(c *fiber.Ctx) error {
	var req RetrieveRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrBadRequest()
	}

	req.Query = strings.TrimSpace(req.Query)
	if err := validate.Struct(&req); err != nil {
		return NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	hits, err := h.ports.Retriever.Search(c.UserContext(), req.Query, domain.FilterFromCountry(req.Filters.Country))
	if err != nil {
		return err
	}

	resp := RetrieveResponse{
		Context:  domain.GroundingContext(hits),
		Passages: make([]Passage, len(hits)),
	}
	for i, hit := range hits {
		p := hit.Record.Payload
		resp.Passages[i] = Passage{
			SiteName: p.SiteName,
			Country:  p.Country,
			URL:      p.SourceURL,
			Score:    hit.Score,
			Text:     p.Text,
		}
	}
	return c.JSON(resp)
}

// HandleFilters lists the countries available as filters. An index failure
// yields an empty list rather than an error.
func (h *Handler) HandleFilters(c *fiber.Ctx) error {
	countries, err := listCountries(c, h.ports.Countries)
	if err != nil {
		logger.Warn("list countries: %v", err)
		countries = []string{}
	}
	return c.JSON(FiltersResponse{Countries: countries})
}

func listCountries(c *fiber.Ctx, svc driving.CountryService) ([]string, error) {
	if svc == nil {
		return []string{}, nil
	}
	return svc.ListCountries(c.UserContext())
}

// HandleHealthy reports that the server is up.
func (h *Handler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}
