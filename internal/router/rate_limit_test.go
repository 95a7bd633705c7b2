package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veluxe-market/internal/config"
	"github.com/veluxe-market/internal/constants"
	"github.com/veluxe-market/internal/guard"
	handlershared "github.com/veluxe-market/internal/http/handlers/shared"
	"github.com/veluxe-market/internal/kv"
	"github.com/veluxe-market/internal/service"

	"github.com/gin-gonic/gin"
)

func TestRateLimitMiddlewareWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, constants.RateLimitCategoryAuth, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
}

func TestRateLimitMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := service.NewRateLimitService(kv.NewMemoryStore(0), config.RateLimitConfig{
		Auth: config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 2},
	})
	r := gin.New()
	r.Use(RateLimitMiddleware(svc, constants.RateLimitCategoryAuth, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		r.ServeHTTP(last, req)
	}

	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			RetryAfterSeconds int64 `json:"retry_after_seconds"`
		} `json:"data"`
	}
	if err := json.Unmarshal(last.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 429 {
		t.Fatalf("status_code want 429 got %d", resp.StatusCode)
	}
	if resp.Data.RetryAfterSeconds <= 0 {
		t.Fatalf("retry_after_seconds should be positive, got %d", resp.Data.RetryAfterSeconds)
	}
}

func TestRateLimitCategoriesCountIndependently(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := service.NewRateLimitService(kv.NewMemoryStore(0), config.RateLimitConfig{
		Auth: config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 1},
		Read: config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 5},
	})
	r := gin.New()
	r.POST("/auth", RateLimitMiddleware(svc, constants.RateLimitCategoryAuth, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/read", RateLimitMiddleware(svc, constants.RateLimitCategoryRead, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// 耗尽 auth 类别
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		r.ServeHTTP(w, req)
	}

	// read 类别不受影响
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("read category should not be throttled, status_code got %d", resp.StatusCode)
	}
}

func TestKeyByAuthOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	handlershared.SetAuthContext(c, guard.AuthContext{})
	if key := KeyByAuthOrIP(c); key != "1.2.3.4" {
		t.Fatalf("anonymous key want 1.2.3.4 got %s", key)
	}

	handlershared.SetAuthContext(c, guard.AuthContext{Authenticated: true, UserID: 42})
	if key := KeyByAuthOrIP(c); key != "u42" {
		t.Fatalf("authenticated key want u42 got %s", key)
	}
}
