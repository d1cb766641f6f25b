package contracts

import (
	"time"

	contractsvc "energy-marketplace/internal/application/contracts"
	"energy-marketplace/internal/domain"
	"energy-marketplace/internal/pkg/validation"
)

// ContractResponse is the wire form of a contract: amounts as fixed two-decimal strings, dates as YYYY-MM-DD.
type ContractResponse struct {
	ID            uint      `json:"id"`
	EnergyType    string    `json:"energy_type"`
	QuantityMWh   string    `json:"quantity_mwh"`
	PricePerMWh   string    `json:"price_per_mwh"`
	DeliveryStart string    `json:"delivery_start"`
	DeliveryEnd   string    `json:"delivery_end"`
	Location      string    `json:"location"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewContractResponse(c *domain.Contract) ContractResponse {
	start, end := c.DeliveryWindow()
	return ContractResponse{
		ID:            c.ID,
		EnergyType:    c.EnergyType,
		QuantityMWh:   c.QuantityMWh.StringFixed(validation.AmountScale),
		PricePerMWh:   c.PricePerMWh.StringFixed(validation.AmountScale),
		DeliveryStart: start.Format(contractsvc.DateLayout),
		DeliveryEnd:   end.Format(contractsvc.DateLayout),
		Location:      c.Location,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt.UTC(),
		UpdatedAt:     c.UpdatedAt.UTC(),
	}
}

type ContractListResponse struct {
	Items  []ContractResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func newContractListResponse(p *contractsvc.ContractPage) ContractListResponse {
	out := ContractListResponse{
		Items:  make([]ContractResponse, 0, len(p.Items)),
		Total:  p.Total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	for i := range p.Items {
		out.Items = append(out.Items, NewContractResponse(&p.Items[i]))
	}
	return out
}

type EventResponse struct {
	EventID    string      `json:"event_id"`
	ContractID uint        `json:"contract_id"`
	EventType  string      `json:"event_type"`
	Data       interface{} `json:"data"`
	CreatedAt  time.Time   `json:"created_at"`
}

func newEventResponses(evs []domain.ContractEvent) []EventResponse {
	out := make([]EventResponse, 0, len(evs))
	for _, ev := range evs {
		out = append(out, EventResponse{
			EventID:    ev.EventID.String(),
			ContractID: ev.ContractID,
			EventType:  ev.EventType,
			Data:       ev.EventData,
			CreatedAt:  ev.CreatedAt.UTC(),
		})
	}
	return out
}

type MarketStatsResponse struct {
	AvailableContracts int64                         `json:"available_contracts"`
	TotalCapacityMWh   string                        `json:"total_capacity_mwh"`
	AvgPricePerMWh     string                        `json:"avg_price_per_mwh"`
	ByEnergyType       []contractsvc.EnergyTypeCount `json:"by_energy_type"`
	Locations          []string                      `json:"locations"`
}

func newMarketStatsResponse(s *contractsvc.MarketStats) MarketStatsResponse {
	return MarketStatsResponse{
		AvailableContracts: s.AvailableContracts,
		TotalCapacityMWh:   s.TotalCapacityMWh.StringFixed(validation.AmountScale),
		AvgPricePerMWh:     s.AvgPricePerMWh.StringFixed(validation.AmountScale),
		ByEnergyType:       s.ByEnergyType,
		Locations:          s.Locations,
	}
}
