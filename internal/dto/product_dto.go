package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Barcode     string          `json:"barcode" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Cost        decimal.Decimal `json:"cost" validate:"min=0"`
	Price       decimal.Decimal `json:"price" validate:"min=0"`
	// InitialShelfStock posts an initial_add ledger entry through the
	// mutation engine; the balance is never written directly.
	InitialShelfStock int        `json:"initial_shelf_stock" validate:"min=0"`
	MinShelfStock     int        `json:"min_shelf_stock" validate:"min=0"`
	MinWarehouseStock int        `json:"min_warehouse_stock" validate:"min=0"`
	SupplierID        *string    `json:"supplier_id"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Category          *string          `json:"category"`
	Cost              *decimal.Decimal `json:"cost"`
	Price             *decimal.Decimal `json:"price"`
	MinShelfStock     *int             `json:"min_shelf_stock"`
	MinWarehouseStock *int             `json:"min_warehouse_stock"`
	SupplierID        *string          `json:"supplier_id"`
}

type ProductFilter struct {
	Barcode  string
	Name     string
	Category string
	Supplier string
	Active   string // "false" = inactive, "all" = everything, default = active
	LowStock bool
	Page     int
	Limit    int
}

type ProductResponse struct {
	ID                string          `json:"id"`
	Barcode           string          `json:"barcode"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	Category          string          `json:"category"`
	Cost              decimal.Decimal `json:"cost"`
	Price             decimal.Decimal `json:"price"`
	ShelfStock        int             `json:"shelf_stock"`
	WarehouseStock    int             `json:"warehouse_stock"`
	MinShelfStock     int             `json:"min_shelf_stock"`
	MinWarehouseStock int             `json:"min_warehouse_stock"`
	SupplierID        *string         `json:"supplier_id,omitempty"`
	Active            bool            `json:"active"`
	LowStock          bool            `json:"low_stock"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
