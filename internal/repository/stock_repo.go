package repository

import (
	"context"

	"storepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository is the only place in the codebase with balance-write SQL.
// Every method that mutates runs against a caller-supplied transaction:
// the mutation engine opens the transaction, locks the product row, applies
// the delta, and appends the ledger entry through this interface.
type StockRepository interface {
	// FindProductForUpdateTx reads the product under a row lock, serializing
	// concurrent mutations of the same product for the rest of the tx.
	FindProductForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// AddToBalanceTx applies a signed delta to one balance column.
	AddToBalanceTx(tx *gorm.DB, id uuid.UUID, kind model.BalanceKind, delta int) error
	// CreateEntryTx appends one immutable ledger entry.
	CreateEntryTx(tx *gorm.DB, entry *model.StockTransaction) error

	// History returns a product's ledger newest-first.
	History(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.StockTransaction, int64, error)
	// LowStock returns active products at or below either threshold.
	// Read-only and untransacted: the low-stock monitor tolerates stale reads.
	LowStock(ctx context.Context) ([]model.Product, error)

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) FindProductForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *stockRepo) AddToBalanceTx(tx *gorm.DB, id uuid.UUID, kind model.BalanceKind, delta int) error {
	col := kind.Column()
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update(col, gorm.Expr(col+" + ?", delta)).Error
}

func (r *stockRepo) CreateEntryTx(tx *gorm.DB, entry *model.StockTransaction) error {
	return tx.Create(entry).Error
}

func (r *stockRepo) History(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.StockTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.StockTransaction
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *stockRepo) LowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active = true").
		Where("shelf_stock <= min_shelf_stock OR (min_warehouse_stock > 0 AND warehouse_stock <= min_warehouse_stock)").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
