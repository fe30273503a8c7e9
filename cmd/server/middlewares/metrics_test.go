package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoutePath(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/notes/:id", normalizeRoutePath(c), "should return route template")
			return c.SendString("ok")
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/notes/abc123", nil))
		assert.NoError(t, err, "request should succeed")
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route returns actual path without panic", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.NotEmpty(t, normalizeRoutePath(c), "should return some path value")
			return c.SendStatus(404)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
		assert.NoError(t, err, "request should not panic")
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", normalizeStatus(204))
	assert.Equal(t, "4xx", normalizeStatus(409))
	assert.Equal(t, "5xx", normalizeStatus(502))
	assert.Equal(t, "301", normalizeStatus(301))
}

func TestAttachMetricsExposesRouteTemplates(t *testing.T) {
	app := fiber.New()
	AttachMetrics(app, NewRegistry())
	app.Get("/api/v1/notes/:id", func(c *fiber.Ctx) error { return c.SendStatus(204) })

	_, err := app.Test(httptest.NewRequest("GET", "/api/v1/notes/abc", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/notes/:id",status="2xx"} 1`)
	assert.Contains(t, body, "http_requests_in_flight 1", "the scrape itself is in flight")
	assert.Contains(t, body, "go_goroutines")
}
