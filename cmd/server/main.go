/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the DTR server: configuration, storage, the
  clock-event engine, the reminder scheduler, and the HTTP surface.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load YAML configuration (defaults when -config is unset)
  3. Open the SQLite event log; pick the roster backend
  4. Build the engine and reminder scheduler
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML configuration path (optional)
  -addr    Listen address override
  -db      SQLite database path override; ":memory:" for in-memory

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop the reminder scheduler, stop accepting new
  connections, wait up to 30s for in-flight requests, close the store.
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hawks/dtr-engine/api"
	"github.com/hawks/dtr-engine/config"
	"github.com/hawks/dtr-engine/dtr"
	"github.com/hawks/dtr-engine/roster"
	"github.com/hawks/dtr-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration path")
	addr := flag.String("addr", "", "listen address override")
	dbPath := flag.String("db", "", "SQLite database path override")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	// Event log store
	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Roster backend
	var users dtr.RosterStore = store
	if cfg.Roster.Backend == "file" {
		fileRoster, err := roster.Open(cfg.Roster.UsersFile, cfg.Roster.AdminsFile)
		if err != nil {
			log.Fatalf("Failed to load roster: %v", err)
		}
		users = fileRoster
	}

	clock := dtr.NewClock(cfg.Attendance.Location)
	engine := dtr.NewEngine(store, users, clock, cfg.Attendance.Rules)

	// Reminder scheduler
	scheduler := dtr.NewReminderScheduler(store, users, dtr.LogNotifier{}, clock, cfg.Attendance.Rules)
	scheduler.Interval = cfg.Reminder.Interval
	scheduler.Lead = cfg.Reminder.Lead
	if cfg.Reminder.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler := api.NewHandler(engine, users, api.LoadMessages(cfg.Server.MessagesFile))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("DTR server starting on %s (zone %s)", cfg.Server.Addr, cfg.Attendance.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
