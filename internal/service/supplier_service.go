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

type SupplierService interface {
	Create(ctx context.Context, role permission.Role, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, role permission.Role, id uuid.UUID) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, role permission.Role, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	sup := &model.Supplier{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	resp := make([]dto.SupplierResponse, len(suppliers))
	for i := range suppliers {
		resp[i] = *supplierToResponse(&suppliers[i])
	}
	return resp, nil
}

func (s *supplierService) Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: supplier %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if req.Name != "" {
		sup.Name = req.Name
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Deactivate(ctx context.Context, role permission.Role, id uuid.UUID) error {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	return s.repo.SoftDelete(ctx, id)
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Phone:   s.Phone,
		Email:   s.Email,
		Address: s.Address,
		Active:  s.Active,
	}
}
