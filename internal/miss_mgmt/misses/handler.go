package misses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"MSM-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// 一覧・単一取得はディスパッチ画面/完了画面の両方が使うので全ロール共通
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/misses", h.List)
	r.GET("/misses/:miss_ulid", h.GetByULID)
}

// 市側: 報告の提出
func RegisterCityRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/misses", h.Submit)
}

// 業者側: ディスパッチ（複数選択）と完了
func RegisterOpsRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/misses/dispatch", h.Dispatch)
	r.POST("/misses/:miss_ulid/complete", h.Complete)
}

// 操作者はJWTの sub から取る（フォーム入力は信用しない）
func actorFrom(c *gin.Context) string {
	if v, ok := c.Get(auth.CtxUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// POST /misses
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitMissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}

	c.Header("Location", "/misses/"+res.MissULID)
	c.JSON(http.StatusCreated, res)
}

// GET /misses?scope=&week_ending=&day_tab=&class=&address=&service_type=&status=
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Scope:       c.DefaultQuery("scope", "master"),
		WeekEnding:  c.Query("week_ending"),
		DayTab:      c.Query("day_tab"),
		Class:       c.Query("class"),
		Address:     c.Query("address"),
		ServiceType: c.Query("service_type"),
		Status:      c.Query("status"),
	}

	res, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /misses/:miss_ulid
func (h *Handler) GetByULID(c *gin.Context) {
	res, err := h.svc.GetByULID(c.Request.Context(), c.Param("miss_ulid"))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /misses/dispatch
func (h *Handler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}

	res, err := h.svc.Dispatch(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /misses/:miss_ulid/complete (multipart)
// フィールド: outcome, driver_checkin, ops_notes / 画像: image（任意）
func (h *Handler) Complete(c *gin.Context) {
	var req CompleteMissRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "outcome and driver_checkin are required"))
		return
	}

	var img *ImageUpload
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "failed to read uploaded image"))
			return
		}
		defer f.Close()
		img = &ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		}
	}

	res, err := h.svc.Complete(c.Request.Context(), c.Param("miss_ulid"), req, img, actorFrom(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	code := CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
