package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ottocrm/ottocrm/internal/observability"
	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

func newMiddlewareTestApp() (*fiber.App, *observability.Metrics) {
	app := fiber.New()
	metrics := observability.NewMetrics()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	return app, metrics
}

func TestErrorMiddlewareEnvelope(t *testing.T) {
	app, _ := newMiddlewareTestApp()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("widget", nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "NOT_FOUND", payload.Error.Code)
	assert.Equal(t, "widget not found", payload.Error.Message)
}

func TestRequestLoggerRecordsFinalStatus(t *testing.T) {
	app, metrics := newMiddlewareTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden("nope")
	})
	app.Get("/fine", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The counter must carry the status the client saw, not the
	// pre-translation 200.
	assert.EqualValues(t, 1, metrics.RequestCount("/boom", http.MethodGet, http.StatusForbidden))
	assert.EqualValues(t, 0, metrics.RequestCount("/boom", http.MethodGet, http.StatusOK))

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/fine", nil))
	require.NoError(t, err)
	assert.EqualValues(t, 1, metrics.RequestCount("/fine", http.MethodGet, http.StatusOK))
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app, _ := newMiddlewareTestApp()
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
