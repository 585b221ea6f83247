package dto

import "github.com/shopspring/decimal"

type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	Lines []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Paid  decimal.Decimal   `json:"paid" validate:"min=0"`
}

type SaleLineResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID        string             `json:"id"`
	Total     decimal.Decimal    `json:"total"`
	Paid      decimal.Decimal    `json:"paid"`
	Change    decimal.Decimal    `json:"change"`
	UserID    string             `json:"user_id"`
	Refunded  bool               `json:"refunded"`
	Lines     []SaleLineResponse `json:"lines"`
	CreatedAt string             `json:"created_at"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type SaleFilter struct {
	From     string
	To       string
	Refunded string // "true" | "false" | "" (all)
	Page     int
	Limit    int
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
