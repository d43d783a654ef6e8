package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/metrics"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/router"
	"github.com/danielhkuo/ballotbox/session"
)

const purgeInterval = 15 * time.Minute

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		slog.Error("invalid database type", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verify connection
	if err := dbConn.PingContext(ctx); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "dialect", dialect)

	store := db.NewStore(dbConn, dialect, cfg.StoreTimeout)

	if cfg.AdminUsername != "" {
		if err := bootstrapAdmin(ctx, store, cfg); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	sessions, closeSessions, err := newSessionManager(ctx, store, cfg)
	if err != nil {
		slog.Error("session store unavailable", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	go purgeSessions(ctx, sessions)

	mux := router.NewRouter(store, sessions, metrics.New(), cfg)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown incomplete", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// bootstrapAdmin upserts the configured committee account so a fresh
// deployment can log in.
func bootstrapAdmin(ctx context.Context, store *db.Store, cfg cliparse.Config) error {
	hash, err := auth.HashSecret(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin, err := store.UpsertAdmin(ctx, cfg.AdminUsername, hash)
	if err != nil {
		return err
	}
	slog.Info("admin account ready", "admin_id", admin.ID, "username", admin.Username)
	return nil
}

// newSessionManager keeps sessions in Redis when configured, otherwise in
// the database.
func newSessionManager(ctx context.Context, store *db.Store, cfg cliparse.Config) (*session.Manager, func(), error) {
	ttl := session.WithTTL(cfg.MemberSessionTTL, cfg.AdminSessionTTL)
	if cfg.RedisURL == "" {
		return session.NewManager(store, ttl), func() {}, nil
	}

	client, err := session.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("sessions stored in redis")
	return session.NewManager(session.NewRedisStore(client), ttl), func() { client.Close() }, nil
}

func purgeSessions(ctx context.Context, sessions *session.Manager) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("expired sessions purged", "count", n)
			}
		}
	}
}
