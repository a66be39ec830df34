package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		wantEcho  bool
		wantValid bool
	}{
		{name: "generated when absent", wantValid: true},
		{name: "propagated when present", header: "abc-123", wantEcho: true},
		{name: "regenerated when oversized", header: strings.Repeat("x", maxRequestIDLen+1), wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/", func(c *gin.Context) {
				seen = GetRequestID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			assert.Equal(t, seen, got)
			if tt.wantEcho {
				assert.Equal(t, tt.header, got)
			}
			if tt.wantValid {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetRequestID_Absent(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))
}

// TestLogging verifies one record is written per request with the expected level and attributes.
func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "success", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			r := gin.New()
			r.Use(RequestID(), Logging(logger))
			r.GET("/users/:id", func(c *gin.Context) { c.String(tt.status, "body") })

			req := httptest.NewRequest(http.MethodGet, "/users/42", nil)
			req.Header.Set(HeaderRequestID, "req-1")
			r.ServeHTTP(httptest.NewRecorder(), req)

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, "http", rec["msg"])
			assert.Equal(t, tt.wantLevel, rec["level"])
			assert.Equal(t, "GET", rec["method"])
			assert.Equal(t, "/users/42", rec["path"])
			assert.EqualValues(t, tt.status, rec["status"])
			assert.EqualValues(t, 4, rec["bytes"])
			assert.Equal(t, "req-1", rec["request_id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		panicVal any
		wantBody string
		wantLog  string
	}{
		{name: "string", panicVal: "boom", wantBody: `{"error":"boom"}`, wantLog: "boom"},
		{name: "error", panicVal: errors.New("db exploded"), wantBody: `{"error":"db exploded"}`, wantLog: "db exploded"},
		{name: "empty message", panicVal: "", wantBody: `{"error":"Internal server error"}`, wantLog: "panic recovered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			r := gin.New()
			r.Use(Recovery(logger))
			r.GET("/panic", func(c *gin.Context) { panic(tt.panicVal) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Contains(t, buf.String(), "panic recovered")
			assert.Contains(t, buf.String(), tt.wantLog)
		})
	}
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doFrom(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRateLimiter_BurstThenReject verifies requests beyond the burst are rejected per client.
func TestRateLimiter_BurstThenReject(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := NewRateLimiter(ctx, 0.001, 2)
	r := newLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, doFrom(r, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, doFrom(r, "10.0.0.1:1001").Code)

	w := doFrom(r, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded. Please try again later."}`, w.Body.String())

	// a different client has its own budget
	assert.Equal(t, http.StatusOK, doFrom(r, "10.0.0.2:1000").Code)
	assert.Equal(t, 2, rl.visitorCount())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := NewRateLimiter(ctx, 1, 1)
	rl.getVisitor("10.0.0.1")
	rl.getVisitor("10.0.0.2")

	rl.evictIdle(time.Now())
	assert.Equal(t, 2, rl.visitorCount())

	rl.evictIdle(time.Now().Add(rl.idle + time.Second))
	assert.Equal(t, 0, rl.visitorCount())
}

func TestRateLimiter_CleanupLoopStopsWithContext(t *testing.T) {
	t.Parallel()

	rl := &RateLimiter{
		visitors:        make(map[string]*visitor),
		rate:            1,
		burst:           1,
		cleanupInterval: 5 * time.Millisecond,
		idle:            0,
	}
	rl.getVisitor("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.cleanupLoop(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rl.visitorCount() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop after cancel")
	}
}
