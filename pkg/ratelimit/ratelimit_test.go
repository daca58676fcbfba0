package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/vita/pkg/redis"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(redis.NewFromClient(rdb)), mr
}

func TestAllowWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Scope: "test", Limit: 3, Window: time.Minute}

	for i := int64(1); i <= 3; i++ {
		result, err := limiter.Allow(ctx, rule, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, i, result.Current)
	}
}

func TestAllowOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Scope: "test", Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(ctx, rule, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Allow(ctx, rule, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, result.RetryAfter, time.Minute)
}

func TestWindowResets(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Scope: "test", Limit: 1, Window: time.Minute}

	result, err := limiter.Allow(ctx, rule, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = limiter.Allow(ctx, rule, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	// Pencere dolunca sayaç kendiliğinden sıfırlanır
	mr.FastForward(61 * time.Second)
	result, err = limiter.Allow(ctx, rule, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestScopesAndIPsAreIsolated(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Scope: "login", Limit: 1, Window: time.Minute}

	result, err := limiter.Allow(ctx, rule, "1.1.1.1")
	require.NoError(t, err)
	require.True(t, result.Allowed)

	// Aynı IP aynı scope'ta limitte — ama farklı IP ve farklı scope temiz
	result, err = limiter.Allow(ctx, rule, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	result, err = limiter.Allow(ctx, rule, "2.2.2.2")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	other := Rule{Scope: "register", Limit: 1, Window: time.Minute}
	result, err = limiter.Allow(ctx, other, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestExtractIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct connection", "10.0.0.1:54321", nil, "10.0.0.1"},
		{"x-forwarded-for single", "10.0.0.1:54321",
			map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"x-forwarded-for chain", "10.0.0.1:54321",
			map[string]string{"X-Forwarded-For": "203.0.113.5, 70.1.2.3"}, "203.0.113.5"},
		{"x-real-ip", "10.0.0.1:54321",
			map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"xff wins over x-real-ip", "10.0.0.1:54321",
			map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"},
			"203.0.113.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ExtractIP(req))
		})
	}
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45*time.Second))
	assert.Equal(t, "1 second(s)", FormatRetryMessage(300*time.Millisecond))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(2*time.Minute))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(90*time.Second))
}
