package reference

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// 提出フォームのプルダウン用
	r.GET("/reference/zones", h.ListZones)
	r.GET("/reference/addresses", h.ListAddresses)
	r.GET("/reference/route", h.Resolve)
}

func (h *Handler) ListZones(c *gin.Context) {
	res, err := h.svc.ListZones(c.Request.Context(), c.Query("service_type"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	res, err := h.svc.ListAddresses(c.Request.Context(), c.Query("service_type"), c.Query("zone"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Resolve(c *gin.Context) {
	res, err := h.svc.Resolve(c.Request.Context(), c.Query("address"), c.Query("service_type"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
