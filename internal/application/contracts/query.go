package contracts

import (
	"context"
	"strings"
	"time"

	"energy-marketplace/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

// sortColumns whitelists the sortable columns.
var sortColumns = map[string]string{
	"id":             "id",
	"price_per_mwh":  "price_per_mwh",
	"quantity_mwh":   "quantity_mwh",
	"delivery_start": "delivery_start",
}

// ListFilter selects, orders and pages contracts. Predicates left at their zero value are not applied.
type ListFilter struct {
	EnergyTypes      []string
	PriceMin         *decimal.Decimal
	PriceMax         *decimal.Decimal
	QtyMin           *decimal.Decimal
	QtyMax           *decimal.Decimal
	Location         string
	DeliveryStartMin *time.Time
	DeliveryEndMax   *time.Time
	Status           *domain.ContractStatus
	SortBy           string
	SortDir          string
	Limit            int
	Offset           int
}

// DefaultListFilter lists Available contracts by id, twenty at a time.
func DefaultListFilter() ListFilter {
	status := domain.StatusAvailable
	return ListFilter{
		Status:  &status,
		SortBy:  "id",
		SortDir: SortAsc,
		Limit:   DefaultLimit,
	}
}

// Normalize fills the default ordering and checks paging and sort bounds.
func (f *ListFilter) Normalize() error {
	if f.SortBy == "" {
		f.SortBy = "id"
	}
	if f.SortDir == "" {
		f.SortDir = SortAsc
	}
	f.SortDir = strings.ToLower(f.SortDir)
	if _, ok := sortColumns[f.SortBy]; !ok {
		return domain.Validation("sort_by must be one of price_per_mwh, quantity_mwh, delivery_start, id")
	}
	if f.SortDir != SortAsc && f.SortDir != SortDesc {
		return domain.Validation("sort_dir must be asc or desc")
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		return domain.Validation("limit must be between 1 and %d", MaxLimit)
	}
	if f.Offset < 0 {
		return domain.Validation("offset must be >= 0")
	}
	if f.Status != nil && !f.Status.Valid() {
		return domain.Validation("status must be Available, Reserved, or Sold")
	}
	return nil
}

// where applies the predicates only; the page query and the count share it.
func (f ListFilter) where(q *gorm.DB) *gorm.DB {
	if len(f.EnergyTypes) > 0 {
		q = q.Where("energy_type IN ?", f.EnergyTypes)
	}
	if f.PriceMin != nil {
		q = q.Where("price_per_mwh >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price_per_mwh <= ?", *f.PriceMax)
	}
	if f.QtyMin != nil {
		q = q.Where("quantity_mwh >= ?", *f.QtyMin)
	}
	if f.QtyMax != nil {
		q = q.Where("quantity_mwh <= ?", *f.QtyMax)
	}
	if f.Location != "" {
		q = q.Where(`location_key LIKE ? ESCAPE '\'`, likePattern(f.Location))
	}
	if f.DeliveryStartMin != nil {
		q = q.Where("delivery_start >= ?", datatypes.Date(DateOnly(*f.DeliveryStartMin)))
	}
	if f.DeliveryEndMax != nil {
		q = q.Where("delivery_end <= ?", datatypes.Date(DateOnly(*f.DeliveryEndMax)))
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}

func (f ListFilter) order(q *gorm.DB) *gorm.DB {
	col := sortColumns[f.SortBy]
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.SortDir == SortDesc})
	if col != "id" {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// ContractPage is one page of a listing. Total counts every match, ignoring paging.
type ContractPage struct {
	Items  []domain.Contract
	Total  int64
	Limit  int
	Offset int
}

func (s *Service) ListContracts(ctx context.Context, f ListFilter) (*ContractPage, error) {
	if err := f.Normalize(); err != nil {
		return nil, err
	}
	page := &ContractPage{Items: []domain.Contract{}, Limit: f.Limit, Offset: f.Offset}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := f.where(tx.Model(&domain.Contract{})).Count(&page.Total).Error; err != nil {
			return err
		}
		return f.order(f.where(tx)).Limit(f.Limit).Offset(f.Offset).Find(&page.Items).Error
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
