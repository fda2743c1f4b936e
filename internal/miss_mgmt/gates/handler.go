package gates

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"MSM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /gates?date=YYYY-MM-DD|today
	r.GET("/gates", h.List)
}

// RegisterOpsRoutes: 完了宣言は業者側の操作
func RegisterOpsRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/gates/complete", h.MarkComplete)
}

// RegisterAdminRoutes: 一括リセットは管理者グループにのみ載せる
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/gates/clear", h.ClearDay)
}

func actorFrom(c *gin.Context) string {
	if v, ok := c.Get(auth.CtxUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.ListForDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MarkComplete(c *gin.Context) {
	var req MarkCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gate_date and service_type are required"})
		return
	}

	res, err := h.svc.MarkComplete(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ClearDay(c *gin.Context) {
	var req ClearDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gate_date is required"})
		return
	}

	res, err := h.svc.ClearDay(c.Request.Context(), req)
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
