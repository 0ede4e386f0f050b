/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the forecasting engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store and load the saved document
  3. Cook the document ahead of today
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080, env PORT)
  -db          SQLite database path (default: forecast.db, env DB_PATH)
               Use ":memory:" for an in-memory database
  -cook-ahead  Months of spawns to materialize past today (default: 12)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Save the document and close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/forecast.db"

  # Run on a different port, two years of forecast
  ./server -port=3000 -cook-ahead=24

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearth/forecast-engine/api"
	"github.com/hearth/forecast-engine/document"
	"github.com/hearth/forecast-engine/ledger"
	"github.com/hearth/forecast-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over the environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "forecast.db"), "SQLite database path")
	cookAhead := flag.Int("cook-ahead", envInt("COOK_AHEAD_MONTHS", 12), "months of spawns to materialize past today")
	flag.Parse()

	// Initialize store and restore the document
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	snap, err := store.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}
	doc, err := document.FromSnapshot(snap, nil, ledger.Today)
	if err != nil {
		log.Fatalf("Failed to restore document: %v", err)
	}

	// Materialize schedule and budget spawns past today so clients see
	// the forecast without cooking first.
	horizon := ledger.DateOf(time.Now().AddDate(0, *cookAhead, 0))
	if err := doc.ContinueCooking(horizon); err != nil {
		log.Fatalf("Failed to cook document: %v", err)
	}

	handler := api.NewHandler(doc, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := store.Save(ctx, doc.Snapshot()); err != nil {
		log.Printf("Warning: failed to save document: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
