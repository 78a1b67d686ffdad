package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"treetodo/internal/api"
	"treetodo/internal/config"
	"treetodo/internal/db"
	"treetodo/pkg/task"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := config.NewLogger(cfg, os.Stderr)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	// Ensure tables exist
	if err := store.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure tasks table: %v", err)
	}

	bus := task.NewBus()
	svc := task.NewService(store, task.WithBus(bus), task.WithLogger(logger))
	// change streams hang off baseCtx and end once shutdown starts
	baseCtx, cancelStreams := context.WithCancel(ctx)
	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     api.New(svc, bus, api.WithLogger(logger), api.WithCORSOrigins(cfg.CORSOrigins)),
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelStreams)

	go func() {
		log.Printf("treetodo listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		// the store must outlive in-flight requests
		"http-server": func(ctx context.Context) error {
			log.Println("shutting down http server")
			err := server.Shutdown(ctx)
			return errors.Join(err, closeStore())
		},
	})

	exitCode := <-wait
	log.Printf("treetodo exited with code %d", exitCode)
	os.Exit(exitCode)
}

// openStore picks Postgres when DATABASE_URL is set and a SQLite file
// otherwise.
func openStore(ctx context.Context, cfg config.Config) (task.Store, func() error, error) {
	if cfg.UsePostgres() {
		pool, err := db.ConnectURL(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using postgres store")
		return task.NewPgStore(pool), func() error { pool.Close(); return nil }, nil
	}
	conn, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("using sqlite store at %s", cfg.SQLitePath)
	return task.NewSQLiteStore(conn), conn.Close, nil
}
