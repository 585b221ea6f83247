package handler

import (
	"context"
	"net/http"
	"strconv"

	"storepos/internal/apierror"
	"storepos/internal/dto"
	"storepos/internal/middleware"
	"storepos/internal/permission"
	"storepos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PurchasesHandler struct{ svc service.PurchaseService }

func NewPurchasesHandler(svc service.PurchaseService) *PurchasesHandler {
	return &PurchasesHandler{svc: svc}
}

func (h *PurchasesHandler) Create(c *gin.Context) {
	var req dto.CreatePORequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), middleware.Role(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PurchasesHandler) List(c *gin.Context) {
	filter := dto.POFilter{
		Status:   c.Query("status"),
		Supplier: c.Query("supplier"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchasesHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchasesHandler) SaveLines(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.SavePOLinesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SaveLines(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PurchasesHandler) Approve(c *gin.Context) {
	h.transition(c, h.svc.Approve)
}

func (h *PurchasesHandler) Reject(c *gin.Context) {
	h.transition(c, h.svc.Reject)
}

func (h *PurchasesHandler) Receive(c *gin.Context) {
	h.transition(c, h.svc.Receive)
}

func (h *PurchasesHandler) transition(c *gin.Context, fn func(ctx context.Context, poID, userID uuid.UUID, role permission.Role) error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := fn(c.Request.Context(), id, middleware.UserID(c), middleware.Role(c)); err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
