package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "user01",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthRouter(secret []byte, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", RequireAuth(secret))
	if len(roles) > 0 {
		g = g.Group("", RequireRole(roles...))
	}
	g.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.MustGet(CtxUserIDKey), "role": c.MustGet(CtxRoleKey)})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	secret := []byte("test-secret")
	r := newAuthRouter(secret)

	// トークンなし
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: %d", w.Code)
	}
	// Bearer 形式でない
	if w := doGet(r, "Basic abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: %d", w.Code)
	}
	// 正常系
	token := signToken(t, secret, validClaims(RoleCity))
	if w := doGet(r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("valid token: %d, body %s", w.Code, w.Body.String())
	}
	// 別鍵で署名
	bad := signToken(t, []byte("other-secret"), validClaims(RoleCity))
	if w := doGet(r, "Bearer "+bad); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: %d", w.Code)
	}
	// 期限切れ
	expired := validClaims(RoleCity)
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	if w := doGet(r, "Bearer "+signToken(t, secret, expired)); w.Code != http.StatusUnauthorized {
		t.Errorf("expired: %d", w.Code)
	}
}

func TestRequireAuth_RejectsUnknownRole(t *testing.T) {
	secret := []byte("test-secret")
	r := newAuthRouter(secret)

	token := signToken(t, secret, validClaims("superuser"))
	if w := doGet(r, "Bearer "+token); w.Code != http.StatusForbidden {
		t.Errorf("unknown role: %d, want 403", w.Code)
	}

	// role クレームなしも拒否
	claims := jwt.MapClaims{"sub": "user01", "exp": time.Now().Add(time.Hour).Unix()}
	if w := doGet(r, "Bearer "+signToken(t, secret, claims)); w.Code != http.StatusForbidden {
		t.Errorf("missing role: %d, want 403", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	secret := []byte("test-secret")
	r := newAuthRouter(secret, RoleOps, RoleAdmin)

	if w := doGet(r, "Bearer "+signToken(t, secret, validClaims(RoleOps))); w.Code != http.StatusOK {
		t.Errorf("ops: %d", w.Code)
	}
	if w := doGet(r, "Bearer "+signToken(t, secret, validClaims(RoleAdmin))); w.Code != http.StatusOK {
		t.Errorf("admin: %d", w.Code)
	}
	// city は業者側エンドポイントに入れない
	if w := doGet(r, "Bearer "+signToken(t, secret, validClaims(RoleCity))); w.Code != http.StatusForbidden {
		t.Errorf("city: %d, want 403", w.Code)
	}
}
