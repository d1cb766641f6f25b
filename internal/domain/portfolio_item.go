package domain

import "time"

// PortfolioItem reserves exactly one Contract for the portfolio.
type PortfolioItem struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContractID uint      `gorm:"column:contract_id;not null;uniqueIndex" json:"contract_id"`
	AddedAt    time.Time `gorm:"column:added_at;autoCreateTime" json:"added_at"`
	Contract   Contract  `gorm:"foreignKey:ContractID;constraint:OnDelete:RESTRICT" json:"contract"`
}

func (PortfolioItem) TableName() string {
	return "portfolio_items"
}
