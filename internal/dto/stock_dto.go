package dto

type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Balance   string `json:"balance" validate:"required,oneof=shelf warehouse"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Reason    string `json:"reason" validate:"required"`
}

type TransferStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	From      string `json:"from" validate:"required,oneof=shelf warehouse"`
	To        string `json:"to" validate:"required,oneof=shelf warehouse"`
	Reason    string `json:"reason"`
}

type AdjustStockResponse struct {
	ProductID  string `json:"product_id"`
	Balance    string `json:"balance"`
	NewBalance int    `json:"new_balance"`
}

type StockTransactionResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	UserID        string `json:"user_id"`
	UserRole      string `json:"user_role"`
	Type          string `json:"type"`
	Quantity      int    `json:"quantity"`
	BalanceBefore int    `json:"balance_before"`
	BalanceAfter  int    `json:"balance_after"`
	Reason        string `json:"reason,omitempty"`
	ReferenceID   *string `json:"reference_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type StockHistoryResponse struct {
	Data  []StockTransactionResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

type LowStockAlert struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Balance        string `json:"balance"` // which balance tripped the threshold
	Current        int    `json:"current"`
	Threshold      int    `json:"threshold"`
}

// StockCountLine is one counted product on a stock count sheet.
type StockCountLine struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Counted   int    `json:"counted" validate:"min=0"`
}

type StockCountRequest struct {
	Lines  []StockCountLine `json:"lines" validate:"required,min=1,dive"`
	Reason string           `json:"reason"`
}

type StockCountResponse struct {
	Adjusted  int `json:"adjusted"`  // products whose balance changed
	Unchanged int `json:"unchanged"` // counted equal to recorded
}
