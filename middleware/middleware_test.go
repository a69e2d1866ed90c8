package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediafolder/utils"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "mediafolder"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateJWTToken("user-1", role, testSecret, testIssuer, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/private", AuthMiddleware(testSecret, testIssuer), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", bearer(t, "viewer"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := serve(r, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "FRAMEWORK__UNAUTHORIZED")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.POST("/write", AuthMiddleware(testSecret, testIssuer), RequireRole("admin", "editor"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for role, want := range map[string]int{
		"admin":  http.StatusOK,
		"editor": http.StatusOK,
		"viewer": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/write", nil)
		req.Header.Set("Authorization", bearer(t, role))

		assert.Equal(t, want, serve(r, req).Code, role)
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIVersion(t *testing.T) {
	r := gin.New()
	r.GET("/api/:version/ping", APIVersion([]string{"1", "2"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := map[string]int{
		"/api/v1/ping": http.StatusOK,
		"/api/v2/ping": http.StatusOK,
		"/api/v3/ping": http.StatusNotFound,
		"/api/1/ping":  http.StatusNotFound,
		"/api/v/ping":  http.StatusNotFound,
	}

	for path, want := range tests {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/id", func(c *gin.Context) {
		id, _ := utils.RequestID(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 16)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rec = serve(r, req)
	assert.Equal(t, "given-id", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "given-id", rec.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://admin.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := serve(r, req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec = serve(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORS_AllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anything.example.com")

	assert.Equal(t, "*", serve(r, req).Header().Get("Access-Control-Allow-Origin"))
}
