package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrii/agenda/internal/config"
	"github.com/vitrii/agenda/internal/session"
	"github.com/vitrii/agenda/internal/utils"
)

func whoami(c echo.Context) error {
	v := ViewerOf(c)
	return c.JSON(http.StatusOK, echo.Map{"id": v.UserID, "auth": v.Authenticated})
}

func do(e *echo.Echo, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIdentityHeader(t *testing.T) {
	e := echo.New()
	e.Use(Identity(""))
	e.GET("/me", whoami)

	rec := do(e, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":0,"auth":false}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/me", map[string]string{"x-user-id": "10"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":10,"auth":true}`, rec.Body.String())

	for _, bad := range []string{"abc", "0", "-3"} {
		rec = do(e, http.MethodGet, "/me", map[string]string{"x-user-id": bad})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, bad)
		assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
	}
}

func TestIdentityBearerTakesPrecedence(t *testing.T) {
	e := echo.New()
	e.Use(Identity("s3cret"))
	e.GET("/me", whoami)

	tok, err := utils.NewAccessToken("s3cret", 42, time.Minute)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + tok.Token, "x-user-id": "10"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":42,"auth":true}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/me", map[string]string{"Authorization": "Basic Zm9vOmJhcg=="})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// header identity still works without a bearer token
	rec = do(e, http.MethodGet, "/me", map[string]string{"x-user-id": "10"})
	assert.JSONEq(t, `{"id":10,"auth":true}`, rec.Body.String())
}

func TestRequireViewer(t *testing.T) {
	e := echo.New()
	e.Use(Identity(""))
	e.GET("/private", whoami, RequireViewer())

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/private", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/private", map[string]string{"x-user-id": "5"}).Code)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
}

func TestResponseCacheHitMissAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, "anuncianteId", zerolog.Nop())

	var calls int32
	e := echo.New()
	e.Use(Identity(""))
	e.GET("/agenda/:anuncianteId", func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusOK, echo.Map{"call": n, "viewer": ViewerOf(c).UserID})
	}, rc.Middleware())

	first := do(e, http.MethodGet, "/agenda/5", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/agenda/5", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), "application/json")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// another viewer gets its own entry
	other := do(e, http.MethodGet, "/agenda/5", map[string]string{"x-user-id": "10"})
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))

	// other advertisers are untouched by invalidation
	do(e, http.MethodGet, "/agenda/6", nil)
	require.NoError(t, rc.InvalidateAdvertiser(context.Background(), 5))

	after := do(e, http.MethodGet, "/agenda/5", nil)
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/agenda/6", nil).Header().Get("X-Cache"))
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, "anuncianteId", zerolog.Nop())
	e := echo.New()
	e.GET("/agenda/:anuncianteId", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "advertiser not found"})
	}, rc.Middleware())

	do(e, http.MethodGet, "/agenda/9", nil)
	rec := do(e, http.MethodGet, "/agenda/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestResponseCacheCanonicalScope(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, "anuncianteId", zerolog.Nop())

	var calls int32
	e := echo.New()
	e.GET("/agenda/:anuncianteId", func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return c.String(http.StatusOK, "ok")
	}, rc.Middleware())

	assert.Equal(t, "MISS", do(e, http.MethodGet, "/agenda/005", nil).Header().Get("X-Cache"))
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/agenda/005", nil).Header().Get("X-Cache"))
	require.NoError(t, rc.InvalidateAdvertiser(context.Background(), 5))
	assert.Equal(t, "MISS", do(e, http.MethodGet, "/agenda/005", nil).Header().Get("X-Cache"))

	// unparsable ids are never cached
	do(e, http.MethodGet, "/agenda/abc", nil)
	rec := do(e, http.MethodGet, "/agenda/abc", nil)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestResponseCacheDisabled(t *testing.T) {
	rc := NewResponseCache(cacheConfig(), nil, "anuncianteId", zerolog.Nop())
	assert.NoError(t, rc.InvalidateAdvertiser(context.Background(), 1))

	e := echo.New()
	e.GET("/agenda/:anuncianteId", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, rc.Middleware())
	rec := do(e, http.MethodGet, "/agenda/1", nil)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[]`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, []byte(`[]`), body)

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 5 * time.Hour, KeyStrategy: "user_route", Prefix: "rl",
	}
	e := echo.New()
	e.Use(Identity(""))
	e.POST("/filas", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb, zerolog.Nop()))

	user := map[string]string{"x-user-id": "10"}
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/filas", user).Code)
	rec := do(e, http.MethodPost, "/filas", user)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	blocked := do(e, http.MethodPost, "/filas", user)
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])

	// buckets are per user
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/filas", map[string]string{"x-user-id": "11"}).Code)
}

func TestTokenBucketFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.POST("/filas", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, NewTokenBucket(cfg, rdb, zerolog.Nop()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/filas", nil).Code, strconv.Itoa(i))
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(Identity(""))
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })

	rec := do(e, http.MethodGet, "/boom", map[string]string{"x-user-id": "3"})
	assert.Equal(t, http.StatusTeapot, rec.Code)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/boom", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.Equal(t, "3", line["user"])
}

func TestViewerOfDefaultsToAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, session.Anonymous(), ViewerOf(c))
}
