package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseService owns the purchase order lifecycle:
// draft → approved → received, with draft|approved → rejected as the terminal
// alternative. Receiving posts every line into warehouse stock through the
// mutation engine, atomically with the status flip.
type PurchaseService interface {
	Create(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CreatePORequest) (*dto.POResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.POResponse, error)
	List(ctx context.Context, filter dto.POFilter) (*dto.POListResponse, error)
	SaveLines(ctx context.Context, poID uuid.UUID, req dto.SavePOLinesRequest) error
	Approve(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error
	Reject(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error
	Receive(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error
}

type purchaseService struct {
	repo        repository.PurchaseOrderRepository
	productRepo repository.ProductRepository
	stock       StockService
}

func NewPurchaseService(repo repository.PurchaseOrderRepository, productRepo repository.ProductRepository, stock StockService) PurchaseService {
	return &purchaseService{repo: repo, productRepo: productRepo, stock: stock}
}

func (s *purchaseService) Create(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CreatePORequest) (*dto.POResponse, error) {
	if !permission.Allowed(role, permission.ActionCreatePO) {
		return nil, fmt.Errorf("%w: role %q cannot CREATE_PO", ErrPermissionDenied, role)
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: supplier_id %q", ErrInvalidInput, req.SupplierID)
	}

	po := &model.PurchaseOrder{
		Name:       req.Name,
		SupplierID: supplierID,
		Status:     model.POStatusDraft,
		Total:      decimal.Zero,
		CreatedBy:  userID,
	}
	if req.ExpectedAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpectedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: expected_at %q", ErrInvalidInput, *req.ExpectedAt)
		}
		po.ExpectedAt = &t
	}

	if err := s.repo.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return poToResponse(po), nil
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.POResponse, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase order %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return poToResponse(po), nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.POFilter) (*dto.POListResponse, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	items := make([]dto.POResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *poToResponse(&orders[i]))
	}
	return &dto.POListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// SaveLines atomically replaces the order's line set and recomputes the total.
// A received order is locked: no further line edits.
func (s *purchaseService) SaveLines(ctx context.Context, poID uuid.UUID, req dto.SavePOLinesRequest) error {
	// Validate lines before touching the order.
	lines := make([]model.PurchaseLine, 0, len(req.Lines))
	total := decimal.Zero
	for _, l := range req.Lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: line with empty product reference", ErrInvalidInput)
		}
		pid, err := uuid.Parse(l.ProductID)
		if err != nil {
			return fmt.Errorf("%w: product_id %q", ErrInvalidInput, l.ProductID)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: line quantity %d", ErrInvalidInput, l.Quantity)
		}
		if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
			return fmt.Errorf("%w: product %s", ErrNotFound, pid)
		}
		line := model.PurchaseLine{ProductID: pid, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
		total = total.Add(line.Subtotal())
		lines = append(lines, line)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		po, err := s.repo.FindForUpdateTx(tx, poID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase order %s", ErrNotFound, poID)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if po.Status == model.POStatusReceived {
			return fmt.Errorf("%w: order %s is received and locked", ErrStateConflict, poID)
		}
		if err := s.repo.ReplaceLinesTx(tx, poID, lines, total); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
}

func (s *purchaseService) Approve(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error {
	if !permission.Allowed(role, permission.ActionApprovePO) {
		return fmt.Errorf("%w: role %q cannot APPROVE_PO", ErrPermissionDenied, role)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		po, err := s.repo.FindForUpdateTx(tx, poID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase order %s", ErrNotFound, poID)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if po.Status != model.POStatusDraft {
			return fmt.Errorf("%w: cannot approve order in status %q", ErrStateConflict, po.Status)
		}
		return s.repo.UpdateStatusTx(tx, poID, model.POStatusApproved)
	})
}

func (s *purchaseService) Reject(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error {
	if !permission.Allowed(role, permission.ActionApprovePO) {
		return fmt.Errorf("%w: role %q cannot APPROVE_PO", ErrPermissionDenied, role)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		po, err := s.repo.FindForUpdateTx(tx, poID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase order %s", ErrNotFound, poID)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if po.Status.Terminal() {
			return fmt.Errorf("%w: cannot reject order in status %q", ErrStateConflict, po.Status)
		}
		return s.repo.UpdateStatusTx(tx, poID, model.POStatusRejected)
	})
}

// Receive posts every line into warehouse stock and flips the order to
// received, all in one atomic unit: either every line writes its ledger entry
// and balance update, or none do and the status stays unchanged. A second
// receive on the same order finds it already received and writes nothing,
// preventing double-counting.
func (s *purchaseService) Receive(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error {
	if !permission.Allowed(role, permission.ActionReceivePO) {
		return fmt.Errorf("%w: role %q cannot RECEIVE_PO", ErrPermissionDenied, role)
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		po, err := s.repo.FindForUpdateTx(tx, poID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: purchase order %s", ErrNotFound, poID)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		switch po.Status {
		case model.POStatusApproved:
			// the only state a receive is valid from
		case model.POStatusReceived:
			return fmt.Errorf("%w: order %s already received", ErrStateConflict, poID)
		default:
			return fmt.Errorf("%w: cannot receive order in status %q", ErrStateConflict, po.Status)
		}

		lines, err := s.repo.LinesTx(tx, poID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		ref := poID
		for _, line := range lines {
			p := AdjustParams{
				ProductID:   line.ProductID,
				Balance:     model.BalanceWarehouse,
				Quantity:    line.Quantity,
				Direction:   model.DirectionIn,
				Type:        model.TxnWarehouseIn,
				UserID:      userID,
				Role:        role,
				Reason:      fmt.Sprintf("PO %s received", po.Name),
				ReferenceID: &ref,
			}
			if _, err := s.stock.AdjustBalanceTx(ctx, tx, p); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatusTx(tx, poID, model.POStatusReceived)
	})
}

func poToResponse(po *model.PurchaseOrder) *dto.POResponse {
	lines := make([]dto.POLineResponse, 0, len(po.Lines))
	for _, l := range po.Lines {
		name := ""
		if l.Product != nil {
			name = l.Product.Name
		}
		lines = append(lines, dto.POLineResponse{
			ID:        l.ID.String(),
			ProductID: l.ProductID.String(),
			Product:   name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	supplierName := ""
	if po.Supplier != nil {
		supplierName = po.Supplier.Name
	}
	var expected *string
	if po.ExpectedAt != nil {
		s := po.ExpectedAt.Format(time.RFC3339)
		expected = &s
	}
	return &dto.POResponse{
		ID:         po.ID.String(),
		Name:       po.Name,
		SupplierID: po.SupplierID.String(),
		Supplier:   supplierName,
		Status:     string(po.Status),
		Total:      po.Total,
		ExpectedAt: expected,
		Lines:      lines,
		CreatedAt:  po.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
