package student

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerStudent(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	api := router.Group("/api")
	NewHandler(NewService(store.NewMemory())).RegisterRoutes(api)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/students/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpointCountsRunes(t *testing.T) {
	w := registerStudent(t, `{"name":"李","studentId":"一二","department":"CS","password":"secret-1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name must be at least 2 characters")
	assert.Contains(t, w.Body.String(), "ID must be at least 3 characters")

	w = registerStudent(t, `{"name":"李雷","studentId":"一二三","department":"CS","password":"secret-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "李雷")
}
