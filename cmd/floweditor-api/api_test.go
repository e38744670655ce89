package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehub/floweditor/pkg/persistence/file"
)

func setupTestApp(t *testing.T, apiToken string) *fiber.App {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	api := NewAPI(slog.Default(), persistence, apiToken)

	return api.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Workflow Editor API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t, "")

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_BearerAuth(t *testing.T) {
	app := setupTestApp(t, "secret-token")

	// No token rejects.
	req := httptest.NewRequest(http.MethodGet, "/workflows/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong token rejects.
	req = httptest.NewRequest(http.MethodGet, "/workflows/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Matching token passes through to the handler.
	req = httptest.NewRequest(http.MethodGet, "/workflows/", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Health endpoints stay open.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_CORSHeaders(t *testing.T) {
	app := setupTestApp(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/workflows/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
