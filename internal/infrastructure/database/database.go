package database

import (
	"fmt"
	"strings"
	"time"

	"energy-marketplace/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open opens a GORM DB for the given driver.
// Postgres: PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers such as PgBouncer.
// SQLite: a single connection, so ":memory:" databases stay visible to every query.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	switch driver {
	case DriverPostgres:
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
	case DriverSQLite, "":
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// AutoMigrate creates or updates the marketplace tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Contract{}, &domain.PortfolioItem{}, &domain.ContractEvent{}); err != nil {
		return err
	}
	return backfillLocationKeys(db)
}

// backfillLocationKeys fills location_key for rows written before the column existed.
func backfillLocationKeys(db *gorm.DB) error {
	var rows []domain.Contract
	fresh := db.Session(&gorm.Session{NewDB: true})
	return db.Select("id", "location").Where("location_key = ?", "").
		FindInBatches(&rows, 500, func(_ *gorm.DB, _ int) error {
			for i := range rows {
				key := strings.ToLower(rows[i].Location)
				if err := fresh.Model(&domain.Contract{}).Where("id = ?", rows[i].ID).UpdateColumn("location_key", key).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// Pinger adapts a GORM DB to the health check.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
