package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
)

func TestRequestIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = telemetry.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "caller id kept", header: "req-42", keep: true},
		{name: "missing id generated", header: "", keep: false},
		{name: "whitespace rejected", header: "bad id", keep: false},
		{name: "oversized rejected", header: strings.Repeat("a", 200), keep: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-Id", tc.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			got := resp.Header().Get("X-Request-Id")
			if got == "" || got != seen {
				t.Fatalf("header %q and context %q should match and be set", got, seen)
			}
			if (got == tc.header) != tc.keep {
				t.Fatalf("kept caller id = %v, want %v (got %q)", got == tc.header, tc.keep, got)
			}
		})
	}
}
