package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/leji-a/Inventory-Tracker/internal/auth"
	"github.com/leji-a/Inventory-Tracker/internal/config"
	"github.com/leji-a/Inventory-Tracker/internal/http/handlers"
	applog "github.com/leji-a/Inventory-Tracker/internal/log"
	"github.com/leji-a/Inventory-Tracker/internal/metrics"
	"github.com/leji-a/Inventory-Tracker/internal/repos"
	"github.com/leji-a/Inventory-Tracker/internal/services"
	"github.com/leji-a/Inventory-Tracker/internal/storage"
)

func main() {
	issue := flag.String("issue-token", "", "print a signed dev token for this uid and exit (AUTH_MODE=jwt)")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "lifetime of -issue-token tokens")
	flag.Parse()

	cfg := config.Load()

	if *issue != "" {
		v, err := auth.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tok, err := v.Issue(*issue, "", *ttl)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(tok)
		return
	}

	logger, err := applog.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	objects, mediaDir, closeObjects, err := openObjects(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeObjects()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	m := metrics.New(cfg.MetricsNamespace)
	deps := handlers.NewDeps(db, objects, m)
	app := handlers.NewApp(deps, handlers.AppOptions{
		Verifier:        verifier,
		Metrics:         m,
		BodyLimit:       cfg.BodyLimitMB << 20,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MediaDir:        mediaDir,
		Health:          db.PingContext,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("auth_mode", cfg.AuthMode))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// openObjects returns the image store for the configured backend and, for
// disk, the directory /media serves.
func openObjects(ctx context.Context, cfg config.Config) (services.ObjectStore, string, func(), error) {
	switch cfg.StorageBackend {
	case "", "disk":
		d, err := storage.NewDisk(cfg.MediaDir, cfg.MediaBaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return d, d.Dir, func() {}, nil
	case "gcs":
		var opts []option.ClientOption
		if cfg.GoogleCredsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredsFile))
		}
		client, err := gcs.NewClient(ctx, opts...)
		if err != nil {
			return nil, "", nil, fmt.Errorf("gcs client: %w", err)
		}
		g, err := storage.NewGCS(client, cfg.GCSBucket, cfg.GCSPublicBaseURL)
		if err != nil {
			_ = client.Close()
			return nil, "", nil, err
		}
		return g, "", func() { _ = client.Close() }, nil
	}
	return nil, "", nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}

func newVerifier(ctx context.Context, cfg config.Config) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case "", "jwt":
		return auth.NewJWTVerifier(cfg.JWTSecret)
	case "firebase":
		if cfg.FirebaseProjectID == "" {
			return nil, errors.New("FIREBASE_PROJECT_ID is required for AUTH_MODE=firebase")
		}
		var opts []option.ClientOption
		if cfg.GoogleCredsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredsFile))
		}
		return auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, opts...)
	}
	return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
}
