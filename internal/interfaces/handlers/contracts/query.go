package contracts

import (
	"strconv"
	"strings"
	"time"

	contractsvc "energy-marketplace/internal/application/contracts"
	"energy-marketplace/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// parseListFilter reads the list query string. Omitted parameters keep their defaults;
// status defaults to Available and an empty status lifts the filter.
func parseListFilter(c *fiber.Ctx) (contractsvc.ListFilter, error) {
	f := contractsvc.DefaultListFilter()
	args := c.Context().QueryArgs()

	for _, raw := range args.PeekMulti("energy_type") {
		if v := strings.TrimSpace(string(raw)); v != "" {
			f.EnergyTypes = append(f.EnergyTypes, v)
		}
	}

	var err error
	if f.PriceMin, err = decimalParam(c, "price_min"); err != nil {
		return f, err
	}
	if f.PriceMax, err = decimalParam(c, "price_max"); err != nil {
		return f, err
	}
	if f.QtyMin, err = decimalParam(c, "qty_min"); err != nil {
		return f, err
	}
	if f.QtyMax, err = decimalParam(c, "qty_max"); err != nil {
		return f, err
	}
	if f.DeliveryStartMin, err = dateParam(c, "delivery_start_min"); err != nil {
		return f, err
	}
	if f.DeliveryEndMax, err = dateParam(c, "delivery_end_max"); err != nil {
		return f, err
	}
	f.Location = strings.TrimSpace(c.Query("location"))

	if args.Has("status") {
		f.Status = nil
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				return f, err
			}
			f.Status = &status
		}
	}

	if f.Limit, err = intParam(c, "limit", contractsvc.DefaultLimit); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(c, "offset", 0); err != nil {
		return f, err
	}
	if v := c.Query("sort_by"); v != "" {
		f.SortBy = v
	}
	if v := c.Query("sort_dir"); v != "" {
		f.SortDir = v
	}
	return f, nil
}

func decimalParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Validation("%s must be a number", name)
	}
	return &d, nil
}

func dateParam(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(contractsvc.DateLayout, raw)
	if err != nil {
		return nil, domain.Validation("%s must be a date (YYYY-MM-DD)", name)
	}
	return &t, nil
}

func intParam(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("%s must be an integer", name)
	}
	return n, nil
}
