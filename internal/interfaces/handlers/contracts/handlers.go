package contracts

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"energy-marketplace/internal/application/contractevents"
	contractsvc "energy-marketplace/internal/application/contracts"
	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *contractsvc.Service
	Events  *contractevents.Service
}

type createContractRequest struct {
	EnergyType    string          `json:"energy_type"`
	QuantityMWh   decimal.Decimal `json:"quantity_mwh"`
	PricePerMWh   decimal.Decimal `json:"price_per_mwh"`
	DeliveryStart string          `json:"delivery_start"`
	DeliveryEnd   string          `json:"delivery_end"`
	Location      string          `json:"location"`
}

// updateContractRequest fields are optional; absent and null both mean unchanged.
type updateContractRequest struct {
	EnergyType    *string          `json:"energy_type"`
	QuantityMWh   *decimal.Decimal `json:"quantity_mwh"`
	PricePerMWh   *decimal.Decimal `json:"price_per_mwh"`
	DeliveryStart *string          `json:"delivery_start"`
	DeliveryEnd   *string          `json:"delivery_end"`
	Location      *string          `json:"location"`
	Status        *string          `json:"status"`
}

// ParseID reads a numeric path parameter. Non-integers are a 400.
func ParseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

func decodeBody(c *fiber.Ctx, dst interface{}) error {
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return domain.Validation("Invalid request body")
	}
	return nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(contractsvc.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domain.Validation("%s must be a date (YYYY-MM-DD)", field)
	}
	return t, nil
}

// POST /contracts
func (h *Handlers) CreateContract(c *fiber.Ctx) error {
	var body createContractRequest
	if err := decodeBody(c, &body); err != nil {
		return err
	}
	start, err := parseDate("delivery_start", body.DeliveryStart)
	if err != nil {
		return err
	}
	end, err := parseDate("delivery_end", body.DeliveryEnd)
	if err != nil {
		return err
	}
	contract, err := h.Service.CreateContract(c.Context(), contractsvc.CreateContractInput{
		EnergyType:    body.EnergyType,
		QuantityMWh:   body.QuantityMWh,
		PricePerMWh:   body.PricePerMWh,
		DeliveryStart: start,
		DeliveryEnd:   end,
		Location:      body.Location,
	})
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "Contract created successfully", NewContractResponse(contract), nil)
}

// GET /contracts
func (h *Handlers) ListContracts(c *fiber.Ctx) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return err
	}
	page, err := h.Service.ListContracts(c.Context(), filter)
	if err != nil {
		return err
	}
	return response.Success(c, "Contracts fetched successfully", newContractListResponse(page), nil)
}

// GET /contracts/:id
func (h *Handlers) GetContract(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	contract, err := h.Service.GetContract(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Contract fetched successfully", NewContractResponse(contract), nil)
}

// PUT /contracts/:id (PATCH alias). Status may only repeat the current value.
func (h *Handlers) UpdateContract(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	var body updateContractRequest
	if err := decodeBody(c, &body); err != nil {
		return err
	}
	in := contractsvc.UpdateContractInput{
		EnergyType:  body.EnergyType,
		QuantityMWh: body.QuantityMWh,
		PricePerMWh: body.PricePerMWh,
		Location:    body.Location,
	}
	if body.DeliveryStart != nil {
		t, err := parseDate("delivery_start", *body.DeliveryStart)
		if err != nil {
			return err
		}
		in.DeliveryStart = &t
	}
	if body.DeliveryEnd != nil {
		t, err := parseDate("delivery_end", *body.DeliveryEnd)
		if err != nil {
			return err
		}
		in.DeliveryEnd = &t
	}
	if body.Status != nil {
		status, err := domain.ParseStatus(*body.Status)
		if err != nil {
			return err
		}
		in.Status = &status
	}
	contract, err := h.Service.UpdateContract(c.Context(), id, in)
	if err != nil {
		return err
	}
	return response.Success(c, "Contract updated successfully", NewContractResponse(contract), nil)
}

// DELETE /contracts/:id, 204
func (h *Handlers) DeleteContract(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Service.DeleteContract(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /contracts/:id/events (newest first)
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	evs, err := h.Events.ListForContract(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Contract events fetched successfully", newEventResponses(evs), fiber.Map{"count": len(evs)})
}

// GET /contracts/stats
func (h *Handlers) MarketStats(c *fiber.Ctx) error {
	stats, err := h.Service.MarketStats(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Market stats fetched successfully", newMarketStatsResponse(stats), nil)
}
