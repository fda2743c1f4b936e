package periods

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// WeekRegistry: 週次ログ登録簿のうちハンドラが使う操作（*Store が実装）
type WeekRegistry interface {
	EnsureWeek(ctx context.Context, weekEnding time.Time) error
	Provisioned(ctx context.Context, weekEnding, dayTab string) (bool, error)
}

type Handler struct {
	store WeekRegistry
	loc   *time.Location
	clock Clock
}

func RegisterRoutes(r gin.IRoutes, store *Store, loc *time.Location) {
	h := &Handler{store: store, loc: loc, clock: realClock{}}

	// 今日の提出先（週締め日・タブ名）の確認用
	r.GET("/periods/current", h.Current)
}

// RegisterAdminRoutes: 週次ログの事前登録（管理者作業、冪等）
func RegisterAdminRoutes(r gin.IRoutes, store *Store, loc *time.Location) {
	h := &Handler{store: store, loc: loc, clock: realClock{}}
	r.POST("/periods", h.EnsureWeek)
}

type ensureWeekRequest struct {
	// "YYYY-MM-DD"。省略時は今日の属する週。
	WeekEnding *string `json:"week_ending,omitempty"`
}

func (h *Handler) EnsureWeek(c *gin.Context) {
	var req ensureWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	we := WeekEndingFor(h.clock.Now().In(h.loc))
	if req.WeekEnding != nil && *req.WeekEnding != "" {
		d, err := time.ParseInLocation(DateLayout, *req.WeekEnding, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_ending must be YYYY-MM-DD"})
			return
		}
		we = WeekEndingFor(d)
	}

	if err := h.store.EnsureWeek(c.Request.Context(), we); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to provision week"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"week_ending": we.Format(DateLayout),
		"title":       SheetTitle(we),
		"day_tabs":    DayTabs,
	})
}

func (h *Handler) Current(c *gin.Context) {
	now := h.clock.Now().In(h.loc)
	we := WeekEndingFor(now)
	tab, ok := DayTabFor(now)

	provisioned := false
	if ok {
		var err error
		provisioned, err = h.store.Provisioned(c.Request.Context(), we.Format(DateLayout), tab)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read period registry"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"week_ending": we.Format(DateLayout),
		"day_tab":     tab,
		"has_tab":     ok,
		"provisioned": provisioned,
	})
}
