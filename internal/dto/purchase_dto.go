package dto

import "github.com/shopspring/decimal"

type CreatePORequest struct {
	Name       string  `json:"name" validate:"required"`
	SupplierID string  `json:"supplier_id" validate:"required,uuid"`
	ExpectedAt *string `json:"expected_at"` // RFC 3339
}

type POLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

type SavePOLinesRequest struct {
	Lines []POLineRequest `json:"lines" validate:"required,dive"`
}

type POLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   string          `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type POResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SupplierID string           `json:"supplier_id"`
	Supplier   string           `json:"supplier,omitempty"`
	Status     string           `json:"status"`
	Total      decimal.Decimal  `json:"total"`
	ExpectedAt *string          `json:"expected_at,omitempty"`
	Lines      []POLineResponse `json:"lines"`
	CreatedAt  string           `json:"created_at"`
}

type POFilter struct {
	Status   string
	Supplier string
	Page     int
	Limit    int
}

type POListResponse struct {
	Data  []POResponse `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
