package export

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /export/misses?week_ending=YYYY-MM-DD
	r.GET("/export/misses", h.ExportWeek)
}

func (h *Handler) ExportWeek(c *gin.Context) {
	buf, filename, err := h.svc.ExportWeek(c.Request.Context(), c.Query("week_ending"))
	if err != nil {
		c.JSON(toHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
