package handler

import (
	"net/http"
	"strconv"

	"storepos/internal/apierror"
	"storepos/internal/dto"
	"storepos/internal/middleware"
	"storepos/internal/model"
	"storepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}
	params := service.AdjustParams{
		ProductID: pid,
		Balance:   model.BalanceKind(req.Balance),
		Quantity:  req.Quantity,
		Direction: model.Direction(req.Direction),
		UserID:    middleware.UserID(c),
		Role:      middleware.Role(c),
		Reason:    req.Reason,
	}
	newBalance, err := h.svc.AdjustBalance(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdjustStockResponse{
		ProductID:  req.ProductID,
		Balance:    req.Balance,
		NewBalance: newBalance,
	})
}

func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	pid, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
		return
	}
	params := service.TransferParams{
		ProductID: pid,
		Quantity:  req.Quantity,
		From:      model.BalanceKind(req.From),
		To:        model.BalanceKind(req.To),
		UserID:    middleware.UserID(c),
		Role:      middleware.Role(c),
		Reason:    req.Reason,
	}
	if err := h.svc.Transfer(c.Request.Context(), params); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StockHandler) History(c *gin.Context) {
	pid, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	resp, err := h.svc.History(c.Request.Context(), pid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) Count(c *gin.Context) {
	var req dto.StockCountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CountStock(c.Request.Context(), middleware.UserID(c), middleware.Role(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
