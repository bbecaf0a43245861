package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"summarist/internal/api"
	"summarist/internal/catalog"
	"summarist/internal/core"
	"summarist/internal/jobs"
	"summarist/internal/store"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	st := store.New(app.DB())
	userCount, err := st.CountUsers()
	if err != nil {
		log.Fatalf("Could not check user count: %v", err)
	}
	if userCount == 0 {
		log.Println("No accounts yet. Register through the API or create one with summarist-cli.")
	}

	// Setup the API server
	server := api.NewServer(app)

	// Fetch the catalog once at startup so the first request doesn't pay for it.
	server.Catalog().Refresh(context.Background())

	// Register and schedule the periodic catalog sync.
	app.JobManager().Register("catalog-sync", func(ctx jobs.JobContext) {
		server.Catalog().Refresh(context.Background())
	})
	jobs.StartJobs(app)

	// Watch the local catalog file for edits, if one is configured.
	if app.Config().Catalog.LocalPath != "" {
		watcher := catalog.NewWatcherService(server.Catalog())
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: could not watch local catalog: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Close every live media session so final progress is flushed.
	server.Players().CloseAll()

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
