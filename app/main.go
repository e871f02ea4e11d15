package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"example.com/cleantec-orders/app/internal/config"
	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
	"example.com/cleantec-orders/app/internal/infra/backoffice"
	"example.com/cleantec-orders/app/internal/infra/event"
	"example.com/cleantec-orders/app/internal/infra/mail"
	"example.com/cleantec-orders/app/internal/infra/metrics"
	"example.com/cleantec-orders/app/internal/infra/persistence/migrations"
	"example.com/cleantec-orders/app/internal/infra/persistence/mysql"
	"example.com/cleantec-orders/app/internal/infra/persistence/postgres"
	"example.com/cleantec-orders/app/internal/infra/security"
	"example.com/cleantec-orders/app/internal/infra/session"
	apihttp "example.com/cleantec-orders/app/internal/interface/http"
	authuc "example.com/cleantec-orders/app/internal/usecase/auth"
	categoryuc "example.com/cleantec-orders/app/internal/usecase/category"
	checkoutuc "example.com/cleantec-orders/app/internal/usecase/checkout"
	customeruc "example.com/cleantec-orders/app/internal/usecase/customer"
	orderuc "example.com/cleantec-orders/app/internal/usecase/order"
	productuc "example.com/cleantec-orders/app/internal/usecase/product"
)

type repositories struct {
	products  domproduct.Repository
	customers domcustomer.Repository
	orders    domorder.Repository
	admins    domadmin.Repository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokenSvc := security.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := authuc.NewService(repos.admins, security.NewBcryptService(0), tokenSvc)
	if cfg.AdminEmail != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
		}
	}

	var notifiers []orderuc.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		publisher := event.NewPublisher(event.NewWriter(cfg.KafkaBrokers), cfg.KafkaTopic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("close event publisher", zap.Error(err))
			}
		}()
		notifiers = append(notifiers, publisher)
	}
	if cfg.SMTPAddr != "" {
		notifiers = append(notifiers, mail.NewNotifier(mail.Config{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, repos.customers, logger))
	}

	productSvc := productuc.NewService(repos.products)
	customerSvc := customeruc.NewService(repos.customers)
	orderSvc := orderuc.NewService(repos.orders, logger, notifiers...)
	defer orderSvc.Wait()

	var (
		validator checkoutuc.ClientValidator = customerSvc
		submitter checkoutuc.OrderSubmitter  = orderSvc
	)
	if cfg.BackofficeURL != "" {
		remote := backoffice.New(backoffice.Config{
			BaseURL: cfg.BackofficeURL,
			Timeout: cfg.BackofficeTimeout,
		}, logger, m.BreakerState)
		validator, submitter = remote, remote
		logger.Info("checkout uses remote back office", zap.String("url", cfg.BackofficeURL))
	}

	store, purge, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	manager := checkoutuc.NewManager(checkoutuc.ManagerDeps{
		Store:     store,
		Products:  productSvc,
		Validator: validator,
		Submitter: submitter,
		Options: checkoutuc.Options{
			RequestTimeout: cfg.CheckoutRequestTimeout,
			ClearDelay:     cfg.CheckoutClearDelay,
			Observer:       m,
		},
		Logger: logger,
	})
	go sweepSessions(ctx, manager, purge, cfg.SessionIdle, logger)

	api := apihttp.NewAPI(apihttp.Dependencies{
		AuthService:     authSvc,
		CategoryService: categoryuc.NewService(repos.products),
		ProductService:  productSvc,
		CustomerService: customerSvc,
		OrderService:    orderSvc,
		Checkout:        manager,
		TokenService:    tokenSvc,
		Metrics:         m,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		if err := migrations.Up(db, migrations.DialectPostgres); err != nil {
			_ = db.Close()
			pool.Close()
			return nil, err
		}
		_ = db.Close()
		logger.Info("postgres ready")
		return &repositories{
			products:  postgres.NewProductRepository(pool),
			customers: postgres.NewCustomerRepository(pool),
			orders:    postgres.NewOrderRepository(pool),
			admins:    postgres.NewAdminRepository(pool),
			close:     pool.Close,
		}, nil

	default:
		dsn, err := cfg.MySQLConnString()
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		if err := migrations.Up(db, migrations.DialectMySQL); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("mysql ready")
		return &repositories{
			products:  mysql.NewProductRepository(db),
			customers: mysql.NewCustomerRepository(db),
			orders:    mysql.NewOrderRepository(db),
			admins:    mysql.NewAdminRepository(db),
			close:     func() { _ = db.Close() },
		}, nil
	}
}

// openSessionStore returns the checkout store and, for the in-memory
// store, a purge function for expired entries.
func openSessionStore(ctx context.Context, cfg *config.Config) (checkoutuc.SessionStore, func() int, error) {
	if cfg.RedisAddr == "" {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		return mem, mem.Purge, nil
	}
	client, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return session.NewRedisStore(client, cfg.SessionTTL), func() int { return 0 }, nil
}

func sweepSessions(ctx context.Context, manager *checkoutuc.Manager, purge func() int, idle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := manager.Sweep(idle)
			purged := purge()
			if evicted > 0 || purged > 0 {
				logger.Debug("checkout sessions swept", zap.Int("evicted", evicted), zap.Int("purged", purged))
			}
		}
	}
}
