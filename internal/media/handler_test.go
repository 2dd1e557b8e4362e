package media

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SlpAus/media-diary-backend/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeAuth 直接把固定的用户ID写入上下文，绕过真实的令牌校验。
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(user.UserIDKey, userID)
		c.Next()
	}
}

func newTestAPI(t *testing.T, userID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := newTestService(t)
	handler := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api", fakeAuth(userID))
	api.POST("/media", handler.AddMedia)
	api.GET("/media", handler.ListMedia)
	api.PUT("/media/:id", handler.UpdateMedia)
	api.DELETE("/media/:id", handler.DeleteMedia)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddMediaEndpoint(t *testing.T) {
	r := newTestAPI(t, 1)

	w := do(t, r, http.MethodPost, "/api/media", gin.H{
		"title": "Dune", "type": "book", "status": "readlist",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Media item added successfully")

	var resp struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.ID)

	w = do(t, r, http.MethodPost, "/api/media", gin.H{
		"title": "", "type": "book", "status": "readlist",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Title is required")
}

func TestListMediaEndpointReturnsEmptyArray(t *testing.T) {
	r := newTestAPI(t, 1)

	w := do(t, r, http.MethodGet, "/api/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestUpdateMediaEndpointNotFound(t *testing.T) {
	r := newTestAPI(t, 1)

	body := gin.H{"title": "Dune", "type": "book", "status": "readlist"}

	// 非数字ID与不存在的条目同样返回404
	w := do(t, r, http.MethodPut, "/api/media/abc", body)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Media item not found")

	w = do(t, r, http.MethodPut, "/api/media/424242", body)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Media item not found")
}

func TestDeleteMediaEndpointLenient(t *testing.T) {
	r := newTestAPI(t, 1)

	for _, path := range []string{"/api/media/424242", "/api/media/abc"} {
		w := do(t, r, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Media item deleted successfully")
	}
}

func TestInvalidFilterEndpoint(t *testing.T) {
	r := newTestAPI(t, 1)

	w := do(t, r, http.MethodGet, "/api/media?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Invalid status filter")
}
