package service

import (
	"context"
	"errors"
	"fmt"

	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdjustParams describes one balance mutation.
type AdjustParams struct {
	ProductID   uuid.UUID
	Balance     model.BalanceKind
	Quantity    int // always positive; Direction carries the sign
	Direction   model.Direction
	// Type overrides the derived ledger type; zero value derives it from
	// Balance and Direction. Catalog paths (initial_add, delete_adjustment)
	// and transfers set it explicitly.
	Type        model.TxnType
	UserID      uuid.UUID
	Role        permission.Role
	Reason      string
	ReferenceID *uuid.UUID
}

// TransferParams moves quantity between the two balances of one product.
type TransferParams struct {
	ProductID uuid.UUID
	Quantity  int
	From      model.BalanceKind
	To        model.BalanceKind
	UserID    uuid.UUID
	Role      permission.Role
	Reason    string
}

// StockService is the stock mutation engine: the only path that writes
// product balances, and the writer of the append-only ledger. Every mutation
// is one atomic unit: balance update and ledger entry commit together or
// not at all.
type StockService interface {
	// AdjustBalance runs one mutation in its own transaction.
	// Requires ADJUST_STOCK.
	AdjustBalance(ctx context.Context, p AdjustParams) (int, error)
	// AdjustBalanceTx is the composition point for checkout, receive, refund
	// and stock counts: it runs inside the caller's transaction and performs
	// no permission check; the calling workflow holds its own action.
	AdjustBalanceTx(ctx context.Context, tx *gorm.DB, p AdjustParams) (int, error)
	// Transfer moves quantity between shelf and warehouse in one atomic
	// unit: an out leg on the source and an in leg on the destination. If
	// the out leg would fail the whole transfer aborts with no ledger
	// entries written. Requires TRANSFER_STOCK.
	Transfer(ctx context.Context, p TransferParams) error
	// CountStock reconciles counted shelf quantities against recorded
	// balances, posting the deltas through the engine in one atomic unit.
	// Requires RUN_INVENTORY.
	CountStock(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.StockCountRequest) (*dto.StockCountResponse, error)
	// History returns a product's ledger newest-first.
	History(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.StockHistoryResponse, error)
	// LowStock lists products at or below a threshold. Read-only, untransacted.
	LowStock(ctx context.Context) ([]dto.LowStockAlert, error)
}

type stockService struct {
	repo repository.StockRepository
}

func NewStockService(repo repository.StockRepository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) AdjustBalance(ctx context.Context, p AdjustParams) (int, error) {
	if !permission.Allowed(p.Role, permission.ActionAdjustStock) {
		return 0, fmt.Errorf("%w: role %q cannot ADJUST_STOCK", ErrPermissionDenied, p.Role)
	}
	var newBalance int
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.AdjustBalanceTx(ctx, tx, p)
		if err != nil {
			return err
		}
		newBalance = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *stockService) AdjustBalanceTx(ctx context.Context, tx *gorm.DB, p AdjustParams) (int, error) {
	if p.Quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidInput, p.Quantity)
	}
	if !p.Balance.Valid() {
		return 0, fmt.Errorf("%w: unknown balance %q", ErrInvalidInput, p.Balance)
	}

	product, err := s.repo.FindProductForUpdateTx(tx, p.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: product %s", ErrNotFound, p.ProductID)
		}
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	before := product.ShelfStock
	if p.Balance == model.BalanceWarehouse {
		before = product.WarehouseStock
	}

	delta := p.Quantity
	if p.Direction == model.DirectionOut {
		if before < p.Quantity {
			return 0, fmt.Errorf("%w: %s %s has %d, requested %d",
				ErrInsufficientStock, product.Name, p.Balance, before, p.Quantity)
		}
		delta = -p.Quantity
	}
	after := before + delta

	if err := s.repo.AddToBalanceTx(tx, p.ProductID, p.Balance, delta); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	txnType := p.Type
	if txnType == "" {
		txnType = model.AdjustmentType(p.Balance, p.Direction)
	}
	entry := &model.StockTransaction{
		ProductID:     p.ProductID,
		ProductName:   product.Name,
		UserID:        p.UserID,
		UserRole:      string(p.Role),
		Type:          txnType,
		Quantity:      p.Quantity,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reason:        p.Reason,
		ReferenceID:   p.ReferenceID,
	}
	if err := s.repo.CreateEntryTx(tx, entry); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return after, nil
}

func (s *stockService) Transfer(ctx context.Context, p TransferParams) error {
	if !permission.Allowed(p.Role, permission.ActionTransferStock) {
		return fmt.Errorf("%w: role %q cannot TRANSFER_STOCK", ErrPermissionDenied, p.Role)
	}
	if !p.From.Valid() || !p.To.Valid() || p.From == p.To {
		return fmt.Errorf("%w: cannot transfer from %q to %q", ErrInvalidInput, p.From, p.To)
	}

	txnType := model.TxnShelfToWarehouse
	if p.From == model.BalanceWarehouse {
		txnType = model.TxnWarehouseToShelf
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		out := AdjustParams{
			ProductID: p.ProductID, Balance: p.From, Quantity: p.Quantity,
			Direction: model.DirectionOut, Type: txnType,
			UserID: p.UserID, Role: p.Role, Reason: p.Reason,
		}
		if _, err := s.AdjustBalanceTx(ctx, tx, out); err != nil {
			return err
		}
		in := AdjustParams{
			ProductID: p.ProductID, Balance: p.To, Quantity: p.Quantity,
			Direction: model.DirectionIn, Type: txnType,
			UserID: p.UserID, Role: p.Role, Reason: p.Reason,
		}
		_, err := s.AdjustBalanceTx(ctx, tx, in)
		return err
	})
}

func (s *stockService) CountStock(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.StockCountRequest) (*dto.StockCountResponse, error) {
	if !permission.Allowed(role, permission.ActionRunInventory) {
		return nil, fmt.Errorf("%w: role %q cannot RUN_INVENTORY", ErrPermissionDenied, role)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: empty count sheet", ErrInvalidInput)
	}
	reason := req.Reason
	if reason == "" {
		reason = "stock count"
	}

	resp := &dto.StockCountResponse{}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, line := range req.Lines {
			pid, err := uuid.Parse(line.ProductID)
			if err != nil {
				return fmt.Errorf("%w: product_id %q", ErrInvalidInput, line.ProductID)
			}
			if line.Counted < 0 {
				return fmt.Errorf("%w: counted quantity %d", ErrInvalidInput, line.Counted)
			}

			product, err := s.repo.FindProductForUpdateTx(tx, pid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %s", ErrNotFound, pid)
				}
				return fmt.Errorf("%w: %v", ErrStorageFailure, err)
			}

			diff := line.Counted - product.ShelfStock
			if diff == 0 {
				resp.Unchanged++
				continue
			}
			dir := model.DirectionIn
			qty := diff
			if diff < 0 {
				dir = model.DirectionOut
				qty = -diff
			}
			p := AdjustParams{
				ProductID: pid, Balance: model.BalanceShelf, Quantity: qty,
				Direction: dir, UserID: userID, Role: role, Reason: reason,
			}
			if _, err := s.AdjustBalanceTx(ctx, tx, p); err != nil {
				return err
			}
			resp.Adjusted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *stockService) History(ctx context.Context, productID uuid.UUID, page, limit int) (*dto.StockHistoryResponse, error) {
	entries, total, err := s.repo.History(ctx, productID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	items := make([]dto.StockTransactionResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, txnToResponse(&e))
	}
	return &dto.StockHistoryResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *stockService) LowStock(ctx context.Context) ([]dto.LowStockAlert, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	alerts := make([]dto.LowStockAlert, 0, len(products))
	for _, p := range products {
		if p.ShelfLow() {
			alerts = append(alerts, dto.LowStockAlert{
				ProductID: p.ID.String(), Name: p.Name,
				Balance: string(model.BalanceShelf),
				Current: p.ShelfStock, Threshold: p.MinShelfStock,
			})
		}
		if p.WarehouseLow() {
			alerts = append(alerts, dto.LowStockAlert{
				ProductID: p.ID.String(), Name: p.Name,
				Balance: string(model.BalanceWarehouse),
				Current: p.WarehouseStock, Threshold: p.MinWarehouseStock,
			})
		}
	}
	return alerts, nil
}

func txnToResponse(e *model.StockTransaction) dto.StockTransactionResponse {
	var ref *string
	if e.ReferenceID != nil {
		s := e.ReferenceID.String()
		ref = &s
	}
	return dto.StockTransactionResponse{
		ID:            e.ID.String(),
		ProductID:     e.ProductID.String(),
		ProductName:   e.ProductName,
		UserID:        e.UserID.String(),
		UserRole:      e.UserRole,
		Type:          string(e.Type),
		Quantity:      e.Quantity,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Reason:        e.Reason,
		ReferenceID:   ref,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
