package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storepos/internal/dto"
	"storepos/internal/model"
	"storepos/internal/permission"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const barcodeCacheTTL = 5 * time.Minute

// ProductService manages the catalog. Stock-bearing operations (initial
// stock on create, zeroing on deactivate) go through the mutation engine so
// every balance change leaves a ledger entry.
type ProductService interface {
	Create(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	// GetByBarcode is the POS hot path; hits a short-lived Redis cache first.
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	// Deactivate soft-deletes the product. Any remaining stock is zeroed
	// through delete_adjustment ledger entries in the same transaction, so
	// the ledger still explains where the units went.
	Deactivate(ctx context.Context, userID uuid.UUID, role permission.Role, id uuid.UUID) error
	Reactivate(ctx context.Context, role permission.Role, id uuid.UUID) error
}

type productService struct {
	repo      repository.ProductRepository
	stockRepo repository.StockRepository
	stock     StockService
	rdb       *redis.Client // nil disables caching
}

func NewProductService(repo repository.ProductRepository, stockRepo repository.StockRepository, stock StockService, rdb *redis.Client) ProductService {
	return &productService{repo: repo, stockRepo: stockRepo, stock: stock, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, userID uuid.UUID, role permission.Role, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}

	product := &model.Product{
		Barcode:           req.Barcode,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Cost:              req.Cost,
		Price:             req.Price,
		MinShelfStock:     req.MinShelfStock,
		MinWarehouseStock: req.MinWarehouseStock,
		Active:            true,
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("%w: supplier_id %q", ErrInvalidInput, *req.SupplierID)
		}
		product.SupplierID = &sid
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, product); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if req.InitialShelfStock > 0 {
			p := AdjustParams{
				ProductID: product.ID,
				Balance:   model.BalanceShelf,
				Quantity:  req.InitialShelfStock,
				Direction: model.DirectionIn,
				Type:      model.TxnInitialAdd,
				UserID:    userID,
				Role:      role,
				Reason:    "initial stock",
			}
			n, err := s.stock.AdjustBalanceTx(ctx, tx, p)
			if err != nil {
				return err
			}
			product.ShelfStock = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return productToResponse(product), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return productToResponse(product), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	if barcode == "" {
		return nil, fmt.Errorf("%w: empty barcode", ErrInvalidInput)
	}

	key := barcodeCacheKey(barcode)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal(raw, &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: barcode %q", ErrNotFound, barcode)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	resp := productToResponse(product)
	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, raw, barcodeCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("barcode cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Cost != nil {
		product.Cost = *req.Cost
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.MinShelfStock != nil {
		if *req.MinShelfStock < 0 {
			return nil, fmt.Errorf("%w: min_shelf_stock %d", ErrInvalidInput, *req.MinShelfStock)
		}
		product.MinShelfStock = *req.MinShelfStock
	}
	if req.MinWarehouseStock != nil {
		if *req.MinWarehouseStock < 0 {
			return nil, fmt.Errorf("%w: min_warehouse_stock %d", ErrInvalidInput, *req.MinWarehouseStock)
		}
		product.MinWarehouseStock = *req.MinWarehouseStock
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("%w: supplier_id %q", ErrInvalidInput, *req.SupplierID)
		}
		product.SupplierID = &sid
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.invalidateBarcode(ctx, product.Barcode)
	return productToResponse(product), nil
}

func (s *productService) Deactivate(ctx context.Context, userID uuid.UUID, role permission.Role, id uuid.UUID) error {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}

	var barcode string
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		product, err := s.stockRepo.FindProductForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %s", ErrNotFound, id)
			}
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		barcode = product.Barcode

		zero := func(kind model.BalanceKind, current int) error {
			if current <= 0 {
				return nil
			}
			p := AdjustParams{
				ProductID: id, Balance: kind, Quantity: current,
				Direction: model.DirectionOut, Type: model.TxnDeleteAdjustment,
				UserID: userID, Role: role, Reason: "product deactivated",
			}
			_, err := s.stock.AdjustBalanceTx(ctx, tx, p)
			return err
		}
		if err := zero(model.BalanceShelf, product.ShelfStock); err != nil {
			return err
		}
		if err := zero(model.BalanceWarehouse, product.WarehouseStock); err != nil {
			return err
		}
		if err := s.repo.SoftDelete(ctx, tx, id); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateBarcode(ctx, barcode)
	return nil
}

func (s *productService) Reactivate(ctx context.Context, role permission.Role, id uuid.UUID) error {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (s *productService) invalidateBarcode(ctx context.Context, barcode string) {
	if s.rdb == nil || barcode == "" {
		return
	}
	if err := s.rdb.Del(ctx, barcodeCacheKey(barcode)).Err(); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("barcode cache invalidation failed")
	}
}

func barcodeCacheKey(barcode string) string { return "product:barcode:" + barcode }

func productToResponse(p *model.Product) *dto.ProductResponse {
	var supplierID *string
	if p.SupplierID != nil {
		s := p.SupplierID.String()
		supplierID = &s
	}
	return &dto.ProductResponse{
		ID:                p.ID.String(),
		Barcode:           p.Barcode,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Cost:              p.Cost,
		Price:             p.Price,
		ShelfStock:        p.ShelfStock,
		WarehouseStock:    p.WarehouseStock,
		MinShelfStock:     p.MinShelfStock,
		MinWarehouseStock: p.MinWarehouseStock,
		SupplierID:        supplierID,
		Active:            p.Active,
		LowStock:          p.ShelfLow() || p.WarehouseLow(),
	}
}
