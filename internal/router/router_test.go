package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/handler"
	"github.com/cpcnewhaven/cpc-web-app/pkg/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(Dependencies{
		Config: &config.Config{APIPrefix: "/api/v1"},
		Logger: zap.NewNop(),
		Admin:  handler.NewAdminHandler(nil, nil, nil, nil),
	})
}

func TestRouterRegistersPublicAliases(t *testing.T) {
	r := newTestRouter(t)

	paths := map[string]bool{}
	for _, route := range r.Routes() {
		if route.Method == http.MethodGet {
			paths[route.Path] = true
		}
	}

	require.True(t, paths["/api/v1/announcements/highlights"])
	assert.True(t, paths["/api/v1/highlights"])
	require.True(t, paths["/api/v1/search/sermons"])
	assert.True(t, paths["/api/v1/sermons/search"])
}

func TestRouterHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
