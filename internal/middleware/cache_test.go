package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rating-service/internal/config"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Custom", "v")
	body := []byte(`{"movies":[]}`)

	raw, err := encodePayload(http.StatusOK, header, body)
	require.NoError(t, err)

	status, gotHeader, gotBody, err := decodePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "v", gotHeader.Get("X-Custom"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, err := decodePayload([]byte{1, 2, 3})
	assert.Error(t, err)

	// Header length pointing past the end of the payload.
	_, _, _, err = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.Error(t, err)
}

func cacheCtx(method, target, route string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(route)
	return c
}

func TestCacheKeyStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}

	// Same route with different queries: route_query keys differ,
	// route keys collide.
	cfg.KeyStrategy = "route_query"
	k1 := cacheKeyFrom(cfg, cacheCtx(http.MethodGet, "/movies?page=1", "/movies"))
	k2 := cacheKeyFrom(cfg, cacheCtx(http.MethodGet, "/movies?page=2", "/movies"))
	assert.NotEqual(t, k1, k2)

	cfg.KeyStrategy = "route"
	k1 = cacheKeyFrom(cfg, cacheCtx(http.MethodGet, "/movies?page=1", "/movies"))
	k2 = cacheKeyFrom(cfg, cacheCtx(http.MethodGet, "/movies?page=2", "/movies"))
	assert.Equal(t, k1, k2)

	cfg.KeyStrategy = "method_route"
	k1 = cacheKeyFrom(cfg, cacheCtx(http.MethodGet, "/movies", "/movies"))
	k2 = cacheKeyFrom(cfg, cacheCtx(http.MethodPost, "/movies", "/movies"))
	assert.NotEqual(t, k1, k2)

	for _, k := range []string{k1, k2} {
		assert.Regexp(t, `^cache:[0-9a-f]{40}$`, k)
	}
}

func TestResponseCacheDisabledPassesThrough(t *testing.T) {
	mw := ResponseCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
