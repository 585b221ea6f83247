package model

import (
	"time"

	"github.com/google/uuid"
)

// BalanceKind selects which of a product's two balances a mutation targets.
type BalanceKind string

const (
	BalanceShelf     BalanceKind = "shelf"
	BalanceWarehouse BalanceKind = "warehouse"
)

// Valid reports whether k is one of the two known balances.
func (k BalanceKind) Valid() bool {
	return k == BalanceShelf || k == BalanceWarehouse
}

// Column returns the products table column holding this balance.
func (k BalanceKind) Column() string {
	if k == BalanceWarehouse {
		return "warehouse_stock"
	}
	return "shelf_stock"
}

// Direction says whether a mutation adds to or removes from a balance.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// TxnType is the closed set of ledger entry types. History and report readers
// share these constants with the mutation engine; no string literals elsewhere.
type TxnType string

const (
	TxnShelfIn          TxnType = "shelf_in"
	TxnShelfOut         TxnType = "shelf_out"
	TxnWarehouseIn      TxnType = "warehouse_in"
	TxnWarehouseOut     TxnType = "warehouse_out"
	TxnShelfToWarehouse TxnType = "shelf_to_warehouse"
	TxnWarehouseToShelf TxnType = "warehouse_to_shelf"
	TxnInitialAdd       TxnType = "initial_add"
	TxnDeleteAdjustment TxnType = "delete_adjustment"
)

// Valid reports whether t is a member of the closed enum.
func (t TxnType) Valid() bool {
	switch t {
	case TxnShelfIn, TxnShelfOut, TxnWarehouseIn, TxnWarehouseOut,
		TxnShelfToWarehouse, TxnWarehouseToShelf, TxnInitialAdd, TxnDeleteAdjustment:
		return true
	}
	return false
}

// AdjustmentType derives the ledger type for a plain adjustment on the given
// balance and direction. Transfers and catalog types are set explicitly by
// their call sites.
func AdjustmentType(kind BalanceKind, dir Direction) TxnType {
	if kind == BalanceWarehouse {
		if dir == DirectionIn {
			return TxnWarehouseIn
		}
		return TxnWarehouseOut
	}
	if dir == DirectionIn {
		return TxnShelfIn
	}
	return TxnShelfOut
}

// StockTransaction is one immutable ledger entry: the audit trail of a single
// balance mutation. Append-only, never updated or deleted, and it outlives
// product deactivation (ProductName is snapshotted at write time).
type StockTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"not null"`
	UserID      uuid.UUID `gorm:"type:uuid;not null"`
	UserRole    string    `gorm:"type:varchar(20);not null"`
	Type        TxnType   `gorm:"type:varchar(30);not null"`
	// Quantity is always positive; Type encodes the direction.
	Quantity      int `gorm:"not null"`
	BalanceBefore int `gorm:"not null"`
	BalanceAfter  int `gorm:"not null"`
	Reason        string
	// ReferenceID links back to the sale or purchase order that caused the
	// mutation, when there is one.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's pluralization (stock_transactions, not
// stock_transactionss on some inflection versions).
func (StockTransaction) TableName() string { return "stock_transactions" }
