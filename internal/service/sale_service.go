package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService owns checkout and refund. Checkout decrements shelf stock for
// every line in one atomic unit; refund restores it and flips the sale's
// refunded flag at most once.
type SaleService interface {
	Checkout(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	Refund(ctx context.Context, saleID, userID uuid.UUID, role permission.Role, req dto.RefundRequest) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	productRepo repository.ProductRepository
	stock       StockService
}

func NewSaleService(repo repository.SaleRepository, productRepo repository.ProductRepository, stock StockService) SaleService {
	return &saleService{repo: repo, productRepo: productRepo, stock: stock}
}

// Checkout validates every line before any mutation, then writes the sale,
// its lines, and one shelf_out ledger entry per line inside a single
// transaction. An insufficient line aborts the whole checkout with no sale
// record and no stock change.
func (s *saleService) Checkout(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	if !permission.Allowed(role, permission.ActionCheckout) {
		return nil, fmt.Errorf("%w: role %q cannot CHECKOUT", ErrPermissionDenied, role)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: empty cart", ErrInvalidInput)
	}

	type resolved struct {
		product *model.Product
		qty     int
	}
	items := make([]resolved, 0, len(req.Lines))
	needed := make(map[uuid.UUID]int)
	total := decimal.Zero

	for _, l := range req.Lines {
		pid, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product_id %q", ErrInvalidInput, l.ProductID)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity %d", ErrInvalidInput, l.Quantity)
		}
		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product %s", ErrNotFound, pid)
			}
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product %q is inactive", ErrInvalidInput, product.Name)
		}
		needed[pid] += l.Quantity
		if product.ShelfStock < needed[pid] {
			return nil, fmt.Errorf("%w: %s has %d on shelf, requested %d",
				ErrInsufficientStock, product.Name, product.ShelfStock, needed[pid])
		}
		items = append(items, resolved{product: product, qty: l.Quantity})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if req.Paid.LessThan(total) {
		return nil, fmt.Errorf("%w: paid %s is less than total %s", ErrInvalidInput, req.Paid, total)
	}

	sale := &model.Sale{
		Total:  total,
		Paid:   req.Paid,
		UserID: userID,
	}
	for _, it := range items {
		sale.Lines = append(sale.Lines, model.SaleLine{
			ProductID:   it.product.ID,
			ProductName: it.product.Name,
			Quantity:    it.qty,
			UnitPrice:   it.product.Price,
		})
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		ref := sale.ID
		for _, it := range items {
			p := AdjustParams{
				ProductID:   it.product.ID,
				Balance:     model.BalanceShelf,
				Quantity:    it.qty,
				Direction:   model.DirectionOut,
				UserID:      userID,
				Role:        role,
				Reason:      "sale",
				ReferenceID: &ref,
			}
			if _, err := s.stock.AdjustBalanceTx(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

// Refund restores every line back to the shelf, records the refund, and flips
// the sale's refunded flag in one atomic unit. The flag is re-checked under a
// row lock so concurrent refunds of the same sale cannot both apply.
func (s *saleService) Refund(ctx context.Context, saleID, userID uuid.UUID, role permission.Role, req dto.RefundRequest) error {
	if !permission.Allowed(role, permission.ActionRefund) {
		return fmt.Errorf("%w: role %q cannot REFUND", ErrPermissionDenied, role)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return fmt.Errorf("%w: refund reason is required", ErrInvalidInput)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindForUpdateTx(tx, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if sale.Refunded {
			return fmt.Errorf("%w: sale %s already refunded", ErrStateConflict, saleID)
		}

		lines, err := s.repo.LinesTx(tx, saleID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		ref := saleID
		for _, line := range lines {
			p := AdjustParams{
				ProductID:   line.ProductID,
				Balance:     model.BalanceShelf,
				Quantity:    line.Quantity,
				Direction:   model.DirectionIn,
				UserID:      userID,
				Role:        role,
				Reason:      "refund: " + reason,
				ReferenceID: &ref,
			}
			if _, err := s.stock.AdjustBalanceTx(ctx, tx, p); err != nil {
				return err
			}
		}

		refund := &model.Refund{
			SaleID:   saleID,
			Amount:   sale.Total,
			UserID:   userID,
			UserRole: string(role),
			Reason:   reason,
		}
		if err := s.repo.CreateRefundTx(tx, refund); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if err := s.repo.MarkRefundedTx(tx, saleID); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(sale.Lines))
	for i := range sale.Lines {
		l := &sale.Lines[i]
		lines = append(lines, dto.SaleLineResponse{
			ProductID: l.ProductID.String(),
			Product:   l.ProductName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return &dto.SaleResponse{
		ID:        sale.ID.String(),
		Total:     sale.Total,
		Paid:      sale.Paid,
		Change:    sale.Paid.Sub(sale.Total),
		UserID:    sale.UserID.String(),
		Refunded:  sale.Refunded,
		Lines:     lines,
		CreatedAt: sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
