package portfolio

import (
	"time"

	portfoliosvc "energy-marketplace/internal/application/portfolio"
	"energy-marketplace/internal/application/reports"
	"energy-marketplace/internal/domain"
	contracthandler "energy-marketplace/internal/interfaces/handlers/contracts"
	"energy-marketplace/internal/pkg/response"
	"energy-marketplace/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *portfoliosvc.Service
}

type addItemRequest struct {
	ContractID *uint `json:"contract_id"`
}

type ItemResponse struct {
	ID         uint                             `json:"id"`
	ContractID uint                             `json:"contract_id"`
	AddedAt    time.Time                        `json:"added_at"`
	Contract   contracthandler.ContractResponse `json:"contract"`
}

type BreakdownResponse struct {
	EnergyType string `json:"energy_type"`
	Count      int    `json:"count"`
	TotalMWh   string `json:"total_mwh"`
	TotalCost  string `json:"total_cost"`
}

type MetricsResponse struct {
	TotalContracts         int                 `json:"total_contracts"`
	TotalCapacityMWh       string              `json:"total_capacity_mwh"`
	TotalCost              string              `json:"total_cost"`
	WeightedAvgPricePerMWh string              `json:"weighted_avg_price_per_mwh"`
	BreakdownByEnergyType  []BreakdownResponse `json:"breakdown_by_energy_type"`
}

type PortfolioResponse struct {
	Items   []ItemResponse  `json:"items"`
	Metrics MetricsResponse `json:"metrics"`
}

func newItemResponse(it *domain.PortfolioItem) ItemResponse {
	return ItemResponse{
		ID:         it.ID,
		ContractID: it.ContractID,
		AddedAt:    it.AddedAt.UTC(),
		Contract:   contracthandler.NewContractResponse(&it.Contract),
	}
}

func newMetricsResponse(m portfoliosvc.Metrics) MetricsResponse {
	out := MetricsResponse{
		TotalContracts:         m.TotalContracts,
		TotalCapacityMWh:       m.TotalCapacityMWh.StringFixed(validation.AmountScale),
		TotalCost:              domain.FormatAmount(m.TotalCost),
		WeightedAvgPricePerMWh: m.WeightedAvgPrice.StringFixed(validation.AmountScale),
		BreakdownByEnergyType:  make([]BreakdownResponse, 0, len(m.ByEnergyType)),
	}
	for _, b := range m.ByEnergyType {
		out.BreakdownByEnergyType = append(out.BreakdownByEnergyType, BreakdownResponse{
			EnergyType: b.EnergyType,
			Count:      b.Count,
			TotalMWh:   b.TotalMWh.StringFixed(validation.AmountScale),
			TotalCost:  domain.FormatAmount(b.TotalCost),
		})
	}
	return out
}

// POST /portfolio/items, 201
func (h *Handlers) AddItem(c *fiber.Ctx) error {
	var body addItemRequest
	if err := c.BodyParser(&body); err != nil {
		return domain.Validation("Invalid request body")
	}
	if body.ContractID == nil {
		return domain.Validation("contract_id is required")
	}
	item, err := h.Service.AddToPortfolio(c.Context(), *body.ContractID)
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "Contract added to portfolio", newItemResponse(item), nil)
}

// DELETE /portfolio/items/:contract_id, 204
func (h *Handlers) RemoveItem(c *fiber.Ctx) error {
	id, err := contracthandler.ParseID(c, "contract_id")
	if err != nil {
		return err
	}
	if err := h.Service.RemoveFromPortfolio(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /portfolio
func (h *Handlers) GetPortfolio(c *fiber.Ctx) error {
	p, err := h.Service.GetPortfolio(c.Context())
	if err != nil {
		return err
	}
	out := PortfolioResponse{
		Items:   make([]ItemResponse, 0, len(p.Items)),
		Metrics: newMetricsResponse(p.Metrics),
	}
	for i := range p.Items {
		out.Items = append(out.Items, newItemResponse(&p.Items[i]))
	}
	return response.Success(c, "Portfolio fetched successfully", out, nil)
}

// GET /portfolio/export?format=xlsx|pdf
func (h *Handlers) Export(c *fiber.Ctx) error {
	format, err := reports.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}
	p, err := h.Service.GetPortfolio(c.Context())
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	data, err := reports.For(format).Generate(p, now)
	if err != nil {
		return err
	}
	log.Debug().Str("format", string(format)).Int("items", len(p.Items)).Int("bytes", len(data)).Msg("portfolio exported")
	c.Attachment(format.Filename(now))
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(data)
}
