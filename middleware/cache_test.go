package middleware

import (
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

func newCacheMiddleware(t *testing.T) (*ResponseCacheMiddleware, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewResponseCacheMiddleware(redis.NewFromClient(rdb)), mr
}

func TestCacheHitServesStoredResponse(t *testing.T) {
	m, _ := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":"countries"}`))
	}))

	// İlk istek: MISS, handler çalışır ve yanıt cache'lenir
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	// İkinci istek: HIT, handler ÇALIŞMAZ
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"data":"countries"}`, rec.Body.String())
	assert.Equal(t, 1, calls)
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	m, _ := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries?q=tr", nil))

	// Farklı query string → farklı cache girdisi
	assert.Equal(t, 2, calls)
}

func TestCacheSkipsNonGet(t *testing.T) {
	m, _ := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/thing", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/thing", nil))
	assert.Equal(t, 2, calls)
}

func TestCacheBypassHeader(t *testing.T) {
	m, _ := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
	req.Header.Set("X-No-Cache", "1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Bypass header'ı ile handler tekrar çalışır
	assert.Equal(t, 2, calls)
}

func TestCacheSkipsErrorResponses(t *testing.T) {
	m, _ := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))

	// 500 yanıt cache'lenmedi — ikinci istekte handler yine çalışır
	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCacheExpires(t *testing.T) {
	m, mr := newCacheMiddleware(t)

	calls := 0
	handler := m.Cache(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	require.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/countries", nil))
	assert.Equal(t, 2, calls)
}
