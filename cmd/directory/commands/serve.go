package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/config"
	"github.com/Skotchmaster/local_directory/internal/db"
	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/httpserver"
	"github.com/Skotchmaster/local_directory/internal/logging"
	loggingmw "github.com/Skotchmaster/local_directory/internal/middleware/logging"
	"github.com/Skotchmaster/local_directory/internal/repo"
	"github.com/Skotchmaster/local_directory/internal/search"
	"github.com/Skotchmaster/local_directory/internal/service"
	"github.com/Skotchmaster/local_directory/internal/tokens"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed default categories and serve the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka disabled, events are dropped")
		return events.Nop{}
	}
	logger.Info("publishing events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
}

func newIndex(ctx context.Context, cfg config.Config, logger *slog.Logger) service.Indexer {
	if cfg.ESURL == "" {
		logger.Info("elasticsearch disabled, search uses the database")
		return nil
	}
	client, err := search.NewClient(ctx, search.Config{
		URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex,
	})
	if err != nil {
		logger.Warn("elasticsearch unavailable, search uses the database", "error", err)
		return nil
	}
	return search.NewIndex(client, cfg.ESIndex)
}

func newEcho(cfg config.Config, logger *slog.Logger, gdb *gorm.DB, codec *tokens.Codec, pub events.Publisher, index service.Indexer) *echo.Echo {
	rp := repo.New(gdb)

	categories := &service.CategoryService{Repo: rp, Events: pub}
	businesses := &service.BusinessService{Repo: rp, Events: pub}
	if index != nil {
		businesses.Index = index
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	httpserver.Register(e, &httpserver.Deps{
		Users:         &httpserver.UserHTTP{Svc: &service.UserService{Repo: rp, Tokens: codec, Events: pub}},
		Businesses:    &httpserver.BusinessHTTP{Svc: businesses},
		Reviews:       &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: rp, Events: pub}},
		Categories:    &httpserver.CategoryHTTP{Svc: categories},
		Tokens:        codec,
		Ready:         func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
	})
	return e
}

// prepareStore migrates the schema and then ensures the default categories.
// Only a migration failure is returned; a failed seed is logged.
func prepareStore(ctx context.Context, gdb *gorm.DB, pub events.Publisher, logger *slog.Logger) error {
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	seed := &service.CategoryService{Repo: repo.New(gdb), Events: pub}
	n, err := seed.EnsureDefaults(logging.IntoContext(ctx, logger))
	if err != nil {
		logger.Error("seed default categories failed", "error", err)
		return nil
	}
	logger.Info("default categories ensured", "created", n)
	return nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx = logging.IntoContext(ctx, logger)

	gdb, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("db close failed", "error", err)
		}
	}()

	pub := newPublisher(cfg, logger)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("publisher close failed", "error", err)
		}
	}()

	if err := prepareStore(ctx, gdb, pub, logger); err != nil {
		return err
	}

	codec := tokens.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	e := newEcho(cfg, logger, gdb, codec, pub, newIndex(ctx, cfg, logger))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("directory listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", "error", err)
	}
	logger.Info("directory stopped")
	return nil
}
