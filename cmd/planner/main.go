// @title			Planner API
// @version		1.0
// @description	Hotel housekeeping task status coordination.
// @BasePath		/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/planner/internal/config"
	"github.com/mtlprog/planner/internal/database"
	"github.com/mtlprog/planner/internal/handler"
	"github.com/mtlprog/planner/internal/logger"
	"github.com/mtlprog/planner/internal/notify"
	"github.com/mtlprog/planner/internal/repository"
	"github.com/mtlprog/planner/internal/service"
)

func main() {
	// Flags read their EnvVars while parsing, so the file is loaded first.
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFile, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "planner",
		Usage: "Hotel housekeeping task status coordinator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "trace-sql",
				Usage:   "Log every SQL statement at debug level",
				EnvVars: []string{"TRACE_SQL"},
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for real-time notifications (disabled when empty)",
				EnvVars: []string{"REDIS_URL"},
			},
			&cli.StringFlag{
				Name:    "redis-prefix",
				Value:   notify.DefaultRedisPrefix,
				Usage:   "Prefix of the Redis pub/sub channels",
				EnvVars: []string{"REDIS_PREFIX"},
			},
			&cli.StringFlag{
				Name:    "amqp-url",
				Usage:   "RabbitMQ URL for integration events (disabled when empty)",
				EnvVars: []string{"AMQP_URL"},
			},
			&cli.StringFlag{
				Name:    "amqp-exchange",
				Value:   notify.DefaultExchange,
				Usage:   "RabbitMQ topic exchange",
				EnvVars: []string{"AMQP_EXCHANGE"},
			},
			&cli.DurationFlag{
				Name:    "notify-timeout",
				Value:   config.DefaultNotifyTimeout,
				Usage:   "Timeout of one notification publish",
				EnvVars: []string{"NOTIFY_TIMEOUT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: runMigrate,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func connect(c *cli.Context) (*database.DB, error) {
	opts := database.DefaultOptions()
	opts.TraceQueries = c.Bool("trace-sql")

	db, err := database.New(c.Context, c.String("database-url"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// buildPublisher always publishes to the in-process bus and adds Redis and
// AMQP when configured. The returned cleanup closes their connections.
func buildPublisher(ctx context.Context, c *cli.Context, bus *notify.Bus) (notify.Publisher, func(), error) {
	publishers := notify.Multi{bus}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if redisURL := c.String("redis-url"); redisURL != "" {
		client, err := notify.NewRedisClient(ctx, redisURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		})
		publishers = append(publishers, notify.NewRedisPublisher(client, c.String("redis-prefix")))
		slog.Info("redis notifications enabled", "prefix", c.String("redis-prefix"))
	}

	if amqpURL := c.String("amqp-url"); amqpURL != "" {
		publisher, err := notify.NewAMQPPublisher(ctx, amqpURL, c.String("amqp-exchange"))
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				slog.Warn("failed to close rabbitmq connection", "error", err)
			}
		})
		publishers = append(publishers, publisher)
		slog.Info("amqp notifications enabled", "exchange", c.String("amqp-exchange"))
	}

	return publishers, cleanup, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	bus := notify.NewBus()
	publisher, closePublishers, err := buildPublisher(ctx, c, bus)
	defer closePublishers()
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(publisher, c.Duration("notify-timeout"))

	pool := db.Pool()
	coordinator := service.NewCoordinator(
		pool,
		repository.NewTaskRepository(pool),
		repository.NewTaskHistoryRepository(pool),
		repository.NewHotelRepository(),
		dispatcher,
		time.Now,
	)

	h := handler.New(pool, coordinator, bus)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Cancelled on shutdown so that event streams end.
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		dispatcher.Close()
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, config.DefaultShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		dispatcher.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Let pending notifications finish, then abort whatever is left.
	drained := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		slog.Warn("aborting pending notifications")
	}
	dispatcher.Close()

	slog.Info("server stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := database.MigrationStatus(c.Context, db.Pool())
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	slog.Info("database is up to date", "version", version)
	return nil
}
