package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestRouterSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	rfps := NewDomainGroup("/rfps")
	rfps.GET("", ok)
	rfps.POST("/:id/publish", ok)

	notifications := NewDomainGroup("/notifications")
	notifications.GET("/unread-count", ok)

	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(rfps).Register(notifications)
	r.Setup()

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v2/rfps"},
		{http.MethodPost, "/api/v2/rfps/123/publish"},
		{http.MethodGet, "/api/v2/notifications/unread-count"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, route.path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rfps", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	group := NewDomainGroup("/system")
	group.GET("/ping", ok)

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-Touched", "yes")
		c.Next()
	})
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Touched"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	parent := NewDomainGroup("/gateway")
	child := parent.Group("/cache")
	child.DELETE("/:version", ok)

	r := NewRouter(engine)
	r.Register(parent)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/gateway/cache/v1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
