package service

import (
	"context"
	"errors"
	"fmt"

	"storepos/internal/config"
	"storepos/internal/infra"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptService renders PDF receipts for completed sales.
type ReceiptService interface {
	// Generate writes the receipt PDF and returns its path on disk.
	Generate(ctx context.Context, saleID uuid.UUID) (string, error)
}

type receiptService struct {
	sales repository.SaleRepository
	cfg   *config.Config
}

func NewReceiptService(sales repository.SaleRepository, cfg *config.Config) ReceiptService {
	return &receiptService{sales: sales, cfg: cfg}
}

func (s *receiptService) Generate(ctx context.Context, saleID uuid.UUID) (string, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: sale %s", ErrNotFound, saleID)
		}
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	path, err := infra.GenerateReceiptPDF(sale, s.cfg.StoreName, s.cfg.PDFStoragePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return path, nil
}
