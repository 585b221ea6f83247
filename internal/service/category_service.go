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

type CategoryService interface {
	Create(ctx context.Context, role permission.Role, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Deactivate(ctx context.Context, role permission.Role, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, role permission.Role, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	c := &model.Category{Name: req.Name, Description: req.Description, Active: true}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return categoryToResponse(c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	resp := make([]dto.CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = *categoryToResponse(&categories[i])
	}
	return resp, nil
}

func (s *categoryService) Update(ctx context.Context, role permission.Role, id uuid.UUID, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return nil, fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return categoryToResponse(c), nil
}

func (s *categoryService) Deactivate(ctx context.Context, role permission.Role, id uuid.UUID) error {
	if !permission.Allowed(role, permission.ActionManageProducts) {
		return fmt.Errorf("%w: role %q cannot MANAGE_PRODUCTS", ErrPermissionDenied, role)
	}
	return s.repo.SoftDelete(ctx, id)
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
	}
}
