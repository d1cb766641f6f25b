package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"energy-marketplace/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err     error
		code    int
		message string
	}{
		{domain.ErrInvalidDeliveryDates, 422, "delivery_end must be >= delivery_start"},
		{domain.ErrContractNotFound, 404, "Contract not found"},
		{domain.ErrAlreadyInPortfolio, 409, "Contract already in portfolio"},
		{fiber.NewError(fiber.StatusBadRequest, "id must be a positive integer"), 400, "id must be a positive integer"},
		{errors.New("disk on fire"), 500, "Internal Server Error"},
	}
	for _, tt := range tests {
		code, message := StatusFor(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.message, message)
	}
}

func TestErrorHandler_Envelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(nil)})
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.ErrContractNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "error", out["status"])
	detail := out["error"].(map[string]interface{})
	assert.Equal(t, "Contract not found", detail["message"])
	assert.Equal(t, float64(404), detail["statusCode"])
}

func TestHealthMarker_CountsServerErrors(t *testing.T) {
	rdb, mr := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(rdb)})
	app.Use(Tracing())
	app.Use(HealthMarker(rdb))
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/gone", func(c *fiber.Ctx) error { return domain.ErrContractNotFound })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, path := range []string{"/ok", "/boom", "/gone", "/health"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	total, _ := mr.Get(KeyReqTotal)
	assert.Equal(t, "3", total)
	failed, _ := mr.Get(KeyReqErrors)
	assert.Equal(t, "1", failed)

	entries, err := mr.List(KeyErrorLog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "boom", entry["message"])
	assert.Equal(t, "/boom", entry["path"])
	assert.NotEmpty(t, entry["trace_id"])
}

func TestHealthMarker_NilRedis(t *testing.T) {
	app := fiber.New()
	app.Use(HealthMarker(nil))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000/"}}))
	app.Get("/contracts", func(c *fiber.Ctx) error { return c.SendString("[]") })

	req := httptest.NewRequest("GET", "/contracts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/contracts", nil)
	pre.Header.Set("Origin", "http://localhost:3000")
	resp, err = app.Test(pre)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "DELETE")

	evil := httptest.NewRequest("GET", "/contracts", nil)
	evil.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(evil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/contracts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCORS_Wildcard(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedOrigins: []string{"*"}}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://anywhere.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestTracing(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get("X-Trace-Id")
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated, string(body))

	incoming := uuid.New().String()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", incoming)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get("X-Trace-Id"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get("X-Trace-Id"))
}
