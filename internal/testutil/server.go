// A shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"summarist/internal/api"
	"summarist/internal/config"
	"summarist/internal/core"
	"summarist/internal/websocket"
)

// TestConfig returns a config with the production defaults the handlers
// care about, pointed at nothing external.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Search.SuggestionLimit = 12
	cfg.Search.ResultLimit = 10
	cfg.Reader.FinishThreshold = 95
	return cfg
}

// SetupTestApp initializes a core.App backed by an in-memory database.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	return SetupTestAppWithConfig(t, TestConfig())
}

// SetupTestAppWithConfig is SetupTestApp with a caller-supplied config, for
// tests that point the catalog or billing endpoints at a fake server.
func SetupTestAppWithConfig(t *testing.T, cfg *config.Config) *core.App {
	t.Helper()
	database := SetupTestDB(t)

	hub := websocket.NewHub()
	go hub.Run()
	return core.NewWithComponents(cfg, database, hub, "test")
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}

// SetupTestServerWithConfig is SetupTestServer with a caller-supplied config.
func SetupTestServerWithConfig(t *testing.T, cfg *config.Config) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestAppWithConfig(t, cfg)
	server := api.NewServer(app)
	return server, app.DB()
}
