package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the long-lived catalog entity. It carries two independent
// balances: ShelfStock (sellable at POS) and WarehouseStock (back-of-store,
// not sellable until transferred to shelf). Both balances are only ever
// written by the stock mutation engine; there is no direct setter anywhere
// else in the codebase.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode     string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	ShelfStock     int `gorm:"not null;default:0"`
	WarehouseStock int `gorm:"not null;default:0"`
	// MinShelfStock / MinWarehouseStock define the low-stock thresholds the
	// background monitor alerts on. Zero disables the warehouse threshold.
	MinShelfStock     int `gorm:"not null;default:5"`
	MinWarehouseStock int `gorm:"not null;default:0"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	Active     bool       `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// ShelfLow reports whether shelf stock is at or below its threshold.
func (p *Product) ShelfLow() bool { return p.ShelfStock <= p.MinShelfStock }

// WarehouseLow reports whether warehouse stock is at or below its threshold.
// A zero threshold means the warehouse balance is not monitored.
func (p *Product) WarehouseLow() bool {
	return p.MinWarehouseStock > 0 && p.WarehouseStock <= p.MinWarehouseStock
}
