package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fixedNow は 1,699,999,980 秒（分境界）から30秒経過した時刻です。
var fixedNow = time.Unix(1_700_000_010, 0)

const testKey = "ratelimit:192.0.2.1:1699999980"

func newTestLimiter(t *testing.T, limit int) (*RedisLimiter, redismock.ClientMock) {
	t.Helper()

	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLimiter(rdb, limit, time.Minute, "")
	l.now = func() time.Time { return fixedNow }
	return l, mock
}

func newRouter(l *RedisLimiter) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/predict/:symbol", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func TestNewRedisLimiter_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		limit         int
		window        time.Duration
		namespace     string
		wantLimit     int
		wantWindow    time.Duration
		wantNamespace string
	}{
		{"zero values use defaults", 0, 0, "", DefaultLimit, DefaultWindow, "ratelimit"},
		{"negative values use defaults", -1, -time.Second, "", DefaultLimit, DefaultWindow, "ratelimit"},
		{"custom values preserved", 5, 10 * time.Second, "rl", 5, 10 * time.Second, "rl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := NewRedisLimiter(nil, tt.limit, tt.window, tt.namespace)
			assert.Equal(t, tt.wantLimit, l.limit)
			assert.Equal(t, tt.wantWindow, l.window)
			assert.Equal(t, tt.wantNamespace, l.namespace)
		})
	}
}

func TestRedisLimiter_Allow_NilRedis(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(nil, 1, time.Minute, "")
	for i := 0; i < 5; i++ {
		ok, _, err := l.Allow(context.Background(), "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRedisLimiter_Allow_FirstRequestSetsExpiry(t *testing.T) {
	t.Parallel()

	l, mock := newTestLimiter(t, 2)
	mock.ExpectIncr(testKey).SetVal(1)
	mock.ExpectExpire(testKey, time.Minute).SetVal(true)

	ok, retryAfter, err := l.Allow(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, retryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_Allow_OverLimit(t *testing.T) {
	t.Parallel()

	l, mock := newTestLimiter(t, 2)
	mock.ExpectIncr(testKey).SetVal(3)

	ok, _, err := l.Allow(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiter_Middleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(mock redismock.ClientMock)
		wantStatus int
		wantBody   string
		wantRetry  string
	}{
		{
			name: "within limit passes",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr(testKey).SetVal(2)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true}`,
		},
		{
			name: "over limit is rejected",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr(testKey).SetVal(4)
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"Rate limit exceeded, please retry later"}`,
			wantRetry:  "30",
		},
		{
			name: "redis error fails open",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectIncr(testKey).SetErr(errors.New("connection refused"))
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"ok":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, mock := newTestLimiter(t, 3)
			tt.setup(mock)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/predict/AAPL", nil)
			req.RemoteAddr = "192.0.2.1:4321"
			newRouter(l).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"192.0.2.1", "192.0.2.1"},
		{"2001:db8::1", "2001_db8__1"},
		{"a b", "a_b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, safe(tt.input))
		})
	}
}
