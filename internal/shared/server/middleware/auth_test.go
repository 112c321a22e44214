package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity())
	router.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})

	cases := []struct {
		header, value string
		status        int
		body          string
	}{
		{"X-User-Id", "user-1", http.StatusOK, "user-1"},
		{"X-Guest-Id", "g1", http.StatusOK, "guest:g1"},
		{"", "", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/who", nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.header, tc.status, resp.Code)
		}
		if tc.body != "" && resp.Body.String() != tc.body {
			t.Fatalf("%s: unexpected body %q", tc.header, resp.Body.String())
		}
	}
}
