package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one completed checkout. The Refunded flag is monotonic false→true;
// a refunded sale cannot be refunded again.
type Sale struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Paid     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Refunded bool            `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User  *User      `gorm:"foreignKey:UserID"`
	Lines []SaleLine `gorm:"foreignKey:SaleID"`
}

// SaleLine snapshots the product name and unit price at checkout time so the
// sale record survives later catalog edits or deactivation.
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Subtotal returns qty × snapshotted unit price.
func (l *SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Refund is the append-only record created when a sale is refunded. It is
// one-to-one with a refunded sale, partial refunds are not modeled.
type Refund struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null"`
	UserRole  string          `gorm:"type:varchar(20);not null"`
	Reason    string          `gorm:"not null"`
	CreatedAt time.Time

	Sale *Sale `gorm:"foreignKey:SaleID"`
}
