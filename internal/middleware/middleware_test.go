package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"absensi/internal/utils"
)

var key = []byte("mw-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLog(), CORS(nil))
	auth := r.Group("/", AuthMiddleware(key))
	ok := func(c *gin.Context) {
		id, role := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	}
	auth.GET("/me", ok)
	auth.GET("/admin", RequireRoles("admin"), ok)
	auth.GET("/users/:userId", SelfOrAdmin("userId"), ok)
	return r
}

func bearer(t *testing.T, id int, role string) string {
	t.Helper()
	tok, _, err := utils.SignAccessToken(key, id, role, time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRoles(t *testing.T) {
	r := newRouter()
	emp := bearer(t, 5, "employee")
	adm := bearer(t, 1, "admin")

	cases := []struct {
		path, auth string
		want       int
	}{
		{"/me", "", http.StatusUnauthorized},
		{"/me", "Bearer garbage", http.StatusUnauthorized},
		{"/me", "Token abc", http.StatusUnauthorized},
		{"/me", emp, http.StatusOK},
		{"/admin", emp, http.StatusForbidden},
		{"/admin", adm, http.StatusOK},
		{"/users/5", emp, http.StatusOK},
		{"/users/6", emp, http.StatusForbidden},
		{"/users/6", adm, http.StatusOK},
		{"/users/abc", adm, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := do(r, http.MethodGet, tc.path, tc.auth); w.Code != tc.want {
			t.Errorf("GET %s: got %d want %d (%s)", tc.path, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestRequestIDAndPreflight(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodOptions, "/me", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != "abc-123" {
		t.Fatalf("request id must be echoed, got %q", rec.Header().Get(HeaderRequestID))
	}
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://hr.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://hr.example.com" {
		t.Fatalf("allowed origin not echoed")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name    string
		body    string
		chunked bool
		want    int
	}{
		{"small", "0123456789", false, http.StatusOK},
		{"declared too large", strings.Repeat("x", 17), false, http.StatusRequestEntityTooLarge},
		{"chunked too large", strings.Repeat("x", 64), true, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tc.body))
			if tc.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
