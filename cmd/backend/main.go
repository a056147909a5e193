package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"driftchat/internal/image"
	"driftchat/internal/server"
)

// Populated via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	addr := getenvDefault("DRIFT_ADDR", ":8080")
	baseURL := getenvDefault("DRIFT_BASE_URL", "http://localhost:8080")
	databaseURL := os.Getenv("DATABASE_URL")
	sessionSecret := os.Getenv("DRIFT_SESSION_SECRET")

	if sessionSecret == "" {
		log.Fatal("DRIFT_SESSION_SECRET is required")
	}

	maxUploadBytes := int64(image.MaxUploadBytesDefault)
	if raw := os.Getenv("DRIFT_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			log.Fatalf("invalid DRIFT_MAX_UPLOAD_BYTES: %q", raw)
		}
		maxUploadBytes = n
	}

	sessionTTL := 12 * time.Hour
	if raw := os.Getenv("DRIFT_SESSION_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			log.Fatalf("invalid DRIFT_SESSION_TTL: %q", raw)
		}
		sessionTTL = d
	}

	var corsOrigins []string
	if raw := os.Getenv("DRIFT_CORS_ORIGINS"); raw != "" {
		corsOrigins = strings.Split(raw, ",")
	}

	db, err := server.OpenDB(databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := server.RunMigrations(db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	resolver, err := image.NewResolver(baseURL)
	if err != nil {
		log.Fatalf("invalid DRIFT_BASE_URL: %v", err)
	}

	images := image.NewService(image.NewSQLStore(db), resolver, maxUploadBytes)

	srv, err := server.New(server.Config{
		Addr:  addr,
		Build: server.BuildInfo{Version: version, Commit: commit},
		Auth: server.AuthConfig{
			SessionSecret: sessionSecret,
			SessionTTL:    sessionTTL,
			DB:            db,
		},
		DB:             db,
		Images:         images,
		MaxUploadBytes: maxUploadBytes,
		CORSOrigins:    corsOrigins,
	})
	if err != nil {
		log.Fatalf("server setup failed: %v", err)
	}

	if archiveCfg := server.LoadArchiveConfig(); archiveCfg.Enabled {
		archiver, err := server.NewArchiver(archiveCfg, db)
		if err != nil {
			log.Fatalf("archiver setup failed: %v", err)
		}
		srv.SetArchiver(archiver)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening addr=%s version=%s commit=%s", addr, version, commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("shutting down signal=%s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
