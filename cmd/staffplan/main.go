package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/staffplan/internal/cli"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/config"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/service"
	"github.com/alexanderramin/staffplan/internal/telemetry"
	"github.com/mattn/go-isatty"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, "staffplan", cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	scales, err := cfg.Scales()
	if err != nil {
		return err
	}

	// Wire repositories and services
	repos := repository.NewSQLiteRepos(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	ledger := service.NewLedgerService(uow, locker, repos, observers...)
	app := &cli.App{
		Ledger:   ledger,
		Approval: service.NewApprovalService(uow, locker, repos, observers...),
		Batch:    service.NewBatchService(uow, locker, repos, observers...),
		Availability: service.NewAvailabilityService(repos, service.AvailabilityConfig{
			Scales:         scales,
			WeeklyCapacity: cfg.WeeklyCapacity(),
			DefaultScale:   cfg.Capacity.DefaultScale,
		}, observers...),
		HourChanges: service.NewHourChangeService(uow, locker, repos, observers...),
		Directory:   service.NewDirectoryService(repos, observers...),
		Import:      service.NewImportService(uow, repos, ledger, observers...),

		Logger: logger,
		HTTP: cli.HTTPSettings{
			Addr:           cfg.HTTPAddr,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
	}

	// Detect interactive terminal for prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// newLocker returns a Redis-backed locker when an address is configured so
// several processes can share one database, and an in-process one otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		return lock.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.WithField("addr", cfg.RedisAddr).Debug("using redis locks")

	locker := lock.NewRedisLocker(rdb, lock.WithTTL(cfg.LockTTL))
	return locker, func() { _ = rdb.Close() }, nil
}
