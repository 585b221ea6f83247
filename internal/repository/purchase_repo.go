package repository

import (
	"context"

	"storepos/internal/dto"
	"storepos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	// FindForUpdateTx re-reads the order header under a row lock so status
	// transitions serialize with concurrent receive/approve calls.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter dto.POFilter) ([]model.PurchaseOrder, int64, error)

	// ReplaceLinesTx swaps the order's line set and writes the new total.
	ReplaceLinesTx(tx *gorm.DB, poID uuid.UUID, lines []model.PurchaseLine, total decimal.Decimal) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.POStatus) error
	LinesTx(tx *gorm.DB, poID uuid.UUID) ([]model.PurchaseLine, error)

	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines.Product").Preload("Supplier").
		First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseRepo) List(ctx context.Context, filter dto.POFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Supplier != "" {
		q = q.Where("supplier_id = ?", filter.Supplier)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	err := q.Preload("Lines").Preload("Supplier").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *purchaseRepo) ReplaceLinesTx(tx *gorm.DB, poID uuid.UUID, lines []model.PurchaseLine, total decimal.Decimal) error {
	if err := tx.Where("purchase_order_id = ?", poID).Delete(&model.PurchaseLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].PurchaseOrderID = poID
	}
	if len(lines) > 0 {
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
	}
	return tx.Model(&model.PurchaseOrder{}).Where("id = ?", poID).Update("total", total).Error
}

func (r *purchaseRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.POStatus) error {
	return tx.Model(&model.PurchaseOrder{}).Where("id = ?", id).Update("status", status).Error
}

func (r *purchaseRepo) LinesTx(tx *gorm.DB, poID uuid.UUID) ([]model.PurchaseLine, error) {
	var lines []model.PurchaseLine
	err := tx.Where("purchase_order_id = ?", poID).Find(&lines).Error
	return lines, err
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
