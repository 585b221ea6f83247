package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POStatus is the purchase order lifecycle state.
// Transitions are monotonic: draft → approved → received, or
// draft|approved → rejected. Received and rejected are terminal.
type POStatus string

const (
	POStatusDraft    POStatus = "draft"
	POStatusApproved POStatus = "approved"
	POStatusReceived POStatus = "received"
	POStatusRejected POStatus = "rejected"
)

// Terminal reports whether no further transition is permitted out of s.
func (s POStatus) Terminal() bool {
	return s == POStatusReceived || s == POStatusRejected
}

// PurchaseOrder is an order placed with a supplier. Once received, the order
// and all its lines are immutable: no line edits, no re-receiving.
type PurchaseOrder struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"not null"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     POStatus  `gorm:"type:varchar(20);not null;default:'draft'"`
	// Total is recomputed as Σ qty×unit_price whenever lines are persisted.
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ExpectedAt *time.Time
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier      `gorm:"foreignKey:SupplierID"`
	Lines    []PurchaseLine `gorm:"foreignKey:PurchaseOrderID"`
}

// PurchaseLine is one product line on a purchase order.
type PurchaseLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Subtotal returns qty × unit price for the line.
func (l *PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
