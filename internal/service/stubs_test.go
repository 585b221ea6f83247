package service

// In-memory repository stubs. The services run their transactions through
// runTx, which passes a nil tx when DB() returns nil, so the mutation paths
// exercise the same code the production engine runs against Postgres.

import (
	"context"
	"time"

	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stubStore is the shared backing state. Product and stock stubs view the
// same products map so catalog and engine tests see one another's writes.
type stubStore struct {
	products map[uuid.UUID]*model.Product
	entries  []model.StockTransaction
}

func newStubStore() *stubStore {
	return &stubStore{products: make(map[uuid.UUID]*model.Product)}
}

func (s *stubStore) addProduct(p model.Product) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	s.products[p.ID] = &p
	return p.ID
}

// entriesFor returns the ledger rows for one product, oldest first.
func (s *stubStore) entriesFor(id uuid.UUID) []model.StockTransaction {
	var out []model.StockTransaction
	for _, e := range s.entries {
		if e.ProductID == id {
			out = append(out, e)
		}
	}
	return out
}

type stubStockRepo struct{ store *stubStore }

func (r *stubStockRepo) FindProductForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubStockRepo) AddToBalanceTx(_ *gorm.DB, id uuid.UUID, kind model.BalanceKind, delta int) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if kind == model.BalanceWarehouse {
		p.WarehouseStock += delta
	} else {
		p.ShelfStock += delta
	}
	return nil
}

func (r *stubStockRepo) CreateEntryTx(_ *gorm.DB, entry *model.StockTransaction) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *stubStockRepo) History(_ context.Context, productID uuid.UUID, _, _ int) ([]model.StockTransaction, int64, error) {
	rows := r.store.entriesFor(productID)
	// newest first
	out := make([]model.StockTransaction, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	return out, int64(len(out)), nil
}

func (r *stubStockRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.store.products {
		if p.Active && (p.ShelfLow() || p.WarehouseLow()) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

type stubProductRepo struct{ store *stubStore }

func (r *stubProductRepo) Create(_ context.Context, _ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cloned := *p
	r.store.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.store.products {
		if p.Barcode == barcode && p.Active {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.store.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cloned := *p
	r.store.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = true
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubPurchaseRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder
	lines  map[uuid.UUID][]model.PurchaseLine
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{
		orders: make(map[uuid.UUID]*model.PurchaseOrder),
		lines:  make(map[uuid.UUID][]model.PurchaseLine),
	}
}

func (r *stubPurchaseRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	po.CreatedAt = time.Now()
	cloned := *po
	r.orders[po.ID] = &cloned
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *po
	cloned.Lines = append([]model.PurchaseLine(nil), r.lines[id]...)
	return &cloned, nil
}

func (r *stubPurchaseRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *po
	return &cloned, nil
}

func (r *stubPurchaseRepo) List(_ context.Context, _ dto.POFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		out = append(out, *po)
	}
	return out, int64(len(out)), nil
}

func (r *stubPurchaseRepo) ReplaceLinesTx(_ *gorm.DB, poID uuid.UUID, lines []model.PurchaseLine, total decimal.Decimal) error {
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].PurchaseOrderID = poID
	}
	r.lines[poID] = lines
	r.orders[poID].Total = total
	return nil
}

func (r *stubPurchaseRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.POStatus) error {
	r.orders[id].Status = status
	return nil
}

func (r *stubPurchaseRepo) LinesTx(_ *gorm.DB, poID uuid.UUID) ([]model.PurchaseLine, error) {
	return append([]model.PurchaseLine(nil), r.lines[poID]...), nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

var _ repository.PurchaseOrderRepository = (*stubPurchaseRepo)(nil)

type stubSaleRepo struct {
	sales   map[uuid.UUID]*model.Sale
	lines   map[uuid.UUID][]model.SaleLine
	refunds []model.Refund
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales: make(map[uuid.UUID]*model.Sale),
		lines: make(map[uuid.UUID][]model.SaleLine),
	}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	for i := range s.Lines {
		s.Lines[i].ID = uuid.New()
		s.Lines[i].SaleID = s.ID
	}
	cloned := *s
	r.sales[s.ID] = &cloned
	r.lines[s.ID] = append([]model.SaleLine(nil), s.Lines...)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s
	cloned.Lines = append([]model.SaleLine(nil), r.lines[id]...)
	return &cloned, nil
}

func (r *stubSaleRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubSaleRepo) LinesTx(_ *gorm.DB, saleID uuid.UUID) ([]model.SaleLine, error) {
	return append([]model.SaleLine(nil), r.lines[saleID]...), nil
}

func (r *stubSaleRepo) MarkRefundedTx(_ *gorm.DB, id uuid.UUID) error {
	r.sales[id].Refunded = true
	return nil
}

func (r *stubSaleRepo) CreateRefundTx(_ *gorm.DB, refund *model.Refund) error {
	refund.ID = uuid.New()
	refund.CreatedAt = time.Now()
	r.refunds = append(r.refunds, *refund)
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) ListRefundsBetween(_ context.Context, from, to time.Time) ([]model.Refund, error) {
	var out []model.Refund
	for _, rf := range r.refunds {
		if !rf.CreatedAt.Before(from) && rf.CreatedAt.Before(to) {
			out = append(out, rf)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)
