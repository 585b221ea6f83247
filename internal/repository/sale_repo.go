package repository

import (
	"context"
	"time"

	"storepos/internal/dto"
	"storepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// FindForUpdateTx re-reads the sale header under a row lock; the refund
	// path uses it to re-check the refunded flag atomically with the write.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	LinesTx(tx *gorm.DB, saleID uuid.UUID) ([]model.SaleLine, error)
	MarkRefundedTx(tx *gorm.DB, id uuid.UUID) error
	CreateRefundTx(tx *gorm.DB, refund *model.Refund) error

	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	ListRefundsBetween(ctx context.Context, from, to time.Time) ([]model.Refund, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Lines").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) LinesTx(tx *gorm.DB, saleID uuid.UUID) ([]model.SaleLine, error) {
	var lines []model.SaleLine
	err := tx.Where("sale_id = ?", saleID).Find(&lines).Error
	return lines, err
}

func (r *saleRepo) MarkRefundedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("refunded", true).Error
}

func (r *saleRepo) CreateRefundTx(tx *gorm.DB, refund *model.Refund) error {
	return tx.Create(refund).Error
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at < ?", filter.To)
	}
	switch filter.Refunded {
	case "true":
		q = q.Where("refunded = true")
	case "false":
		q = q.Where("refunded = false")
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

	err := q.Preload("Lines").Order("created_at DESC").Offset(offset).Limit(limit).Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListRefundsBetween(ctx context.Context, from, to time.Time) ([]model.Refund, error) {
	var refunds []model.Refund
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&refunds).Error
	return refunds, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }
