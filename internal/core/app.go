package core

import (
	"database/sql"
	"fmt"
	"log"

	"summarist/internal/config"
	"summarist/internal/db"
	"summarist/internal/jobs"
	"summarist/internal/websocket"
)

// Version is stamped by the build. Kept here so every component that needs
// it can reach it through the App.
var Version = "dev"

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	cfg        *config.Config
	database   *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	app := &App{
		cfg:      cfg,
		database: database,
		wsHub:    websocket.NewHub(),
		version:  Version,
	}
	app.jobManager = jobs.NewManager(app)
	go app.wsHub.Run()

	log.Println("Core application setup complete.")
	return app, nil
}

// NewWithComponents assembles an App from pre-built parts. Used by tests.
func NewWithComponents(cfg *config.Config, database *sql.DB, hub *websocket.Hub, version string) *App {
	app := &App{
		cfg:      cfg,
		database: database,
		wsHub:    hub,
		version:  version,
	}
	app.jobManager = jobs.NewManager(app)
	return app
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// DB returns the database handle.
func (a *App) DB() *sql.DB { return a.database }

// WsHub returns the websocket hub.
func (a *App) WsHub() *websocket.Hub { return a.wsHub }

// JobManager returns the background job manager.
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }

// Version returns the build version string.
func (a *App) Version() string { return a.version }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}
