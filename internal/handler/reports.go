package handler

import (
	"net/http"
	"time"

	"storepos/internal/apierror"
	"storepos/internal/middleware"
	"storepos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Revenue returns gross/refunded/net revenue between from (inclusive) and to
// (exclusive), both YYYY-MM-DD. Defaults to the last 30 days.
func (h *ReportsHandler) Revenue(c *gin.Context) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if q := c.Query("from"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid from date, expected YYYY-MM-DD"))
			return
		}
		from = t
	}
	if q := c.Query("to"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid to date, expected YYYY-MM-DD"))
			return
		}
		to = t
	}

	resp, err := h.svc.Revenue(c.Request.Context(), middleware.Role(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
