package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetIPFromContext_GinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.Use(IPMiddleware())
	r.GET("/test", func(c *gin.Context) {
		got = GetIPFromContext(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "192.168.1.1", got)
}

func TestGetIPFromContext_PlainContext(t *testing.T) {
	assert.Equal(t, "", GetIPFromContext(context.Background()))
}

func TestGetUserAgentFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		got = GetUserAgentFromContext(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("User-Agent", "mindwell-test/1.0")
	r.ServeHTTP(w, req)

	assert.Equal(t, "mindwell-test/1.0", got)
	assert.Equal(t, "", GetUserAgentFromContext(context.Background()))
}
