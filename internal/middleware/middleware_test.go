package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(handlers...)
	engine.Any("/product", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	return engine
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	engine := newEngine(CORS())

	w := serve(engine, httptest.NewRequest(http.MethodOptions, "/product", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Error("Expected PATCH in allowed methods")
	}

	w = serve(engine, httptest.NewRequest(http.MethodGet, "/product", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 after CORS, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newEngine(SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/product", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRequestID(t *testing.T) {
	engine := newEngine(RequestID())

	t.Run("generated", func(t *testing.T) {
		w := serve(engine, httptest.NewRequest(http.MethodGet, "/product", nil))
		id := w.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("Expected a generated request ID")
		}
		if w.Body.String() != id {
			t.Errorf("Context request ID %q does not match header %q", w.Body.String(), id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/product", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := serve(engine, req)
		if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("Request ID = %q, want abc-123", got)
		}
	})
}

func TestStructuredLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := newEngine(RequestID(), StructuredLogger(logger))
	engine.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/product?productId=1", nil))
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected a log entry")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("Level = %v, want info", entry.Level)
	}
	if entry.Data["query"] != "productId=1" {
		t.Errorf("query field = %v", entry.Data["query"])
	}
	if entry.Data["request_id"] == "" {
		t.Error("Expected request_id field")
	}

	serve(engine, httptest.NewRequest(http.MethodGet, "/fail", nil))
	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Errorf("Expected error level for 500, got %v", hook.LastEntry().Level)
	}

	serve(engine, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("Expected warn level for 404, got %v", hook.LastEntry().Level)
	}
}

func TestPerformanceMonitor(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := gin.New()
	engine.Use(PerformanceMonitor(logger, time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) {
		time.Sleep(5 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if len(hook.Entries) != 1 || hook.LastEntry().Message != "Slow request detected" {
		t.Errorf("Expected a slow request warning, got %d entries", len(hook.Entries))
	}
}

func TestRateLimiter(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := newEngine(RateLimiter(logger, 0.001, 2))

	for i := 0; i < 2; i++ {
		if w := serve(engine, httptest.NewRequest(http.MethodGet, "/product", nil)); w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/product", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), `{"Message":"Too many requests`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.WarnLevel {
		t.Error("Expected a rate limit warning")
	}
}

func TestContentTypeValidation(t *testing.T) {
	engine := newEngine(ContentTypeValidation())

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"json", `{"productId":"1"}`, "application/json; charset=utf-8", http.StatusOK},
		{"no content type", `{"productId":"1"}`, "", http.StatusOK},
		{"no body", "", "text/plain", http.StatusOK},
		{"form", "productId=1", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if w := serve(engine, req); w.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequestSizeLimit(t *testing.T) {
	engine := newEngine(RequestSizeLimit(8))

	w := serve(engine, httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{"a":1}`)))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for small body, got %d", w.Code)
	}

	w = serve(engine, httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{"productId":"1"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 for large body, got %d", w.Code)
	}
}
