package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/storefront-cart/app/internal/config"
	domsession "example.com/storefront-cart/app/internal/domain/session"
	"example.com/storefront-cart/app/internal/infra/mail"
	"example.com/storefront-cart/app/internal/infra/persistence/sqlstore"
	"example.com/storefront-cart/app/internal/infra/security"
	infrasession "example.com/storefront-cart/app/internal/infra/session"
	apihttp "example.com/storefront-cart/app/internal/interface/http"
	"example.com/storefront-cart/app/internal/logging"
	authuc "example.com/storefront-cart/app/internal/usecase/auth"
	cartuc "example.com/storefront-cart/app/internal/usecase/cart"
	checkoutuc "example.com/storefront-cart/app/internal/usecase/checkout"
	productuc "example.com/storefront-cart/app/internal/usecase/product"
)

type sessionBackend interface {
	domsession.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
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

	dialect, err := sqlstore.ParseDialect(cfg.DBDriver)
	if err != nil {
		return err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	productRepo := sqlstore.NewProductRepository(db, dialect)
	userRepo := sqlstore.NewUserRepository(db, dialect)
	tokenSvc := security.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	notifier := mail.NewSMTPNotifier(mail.Config{
		Addr:     cfg.SMTPAddr,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Timeout:  cfg.SMTPTimeout,
	})

	api := apihttp.NewAPI(apihttp.Dependencies{
		AuthService:    authuc.NewService(userRepo, security.NewPasswordHasher(0), tokenSvc),
		ProductService: productuc.NewService(productRepo),
		CartService:    cartuc.NewService(productRepo),
		CheckoutService: checkoutuc.NewService(productRepo, notifier, checkoutuc.Config{
			StoreName: cfg.StoreName,
			From:      cfg.FromEmail,
			To:        cfg.NotifyTo,
		}, logger.Named("checkout")),
		SessionStore: sessions,
		SessionCookie: apihttp.SessionCookie{
			Name:   cfg.SessionCookie,
			TTL:    cfg.SessionTTL,
			Secure: cfg.SecureCookie,
		},
		LoginURL: cfg.LoginURL,
		HealthChecks: map[string]apihttp.HealthCheck{
			"database": pingDB(db),
			"sessions": sessions.Ping,
		},
		Logger: logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("db_driver", string(dialect)),
			zap.Bool("redis_sessions", cfg.RedisURL != ""))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openSessions(ctx context.Context, cfg config.Config) (sessionBackend, error) {
	if cfg.RedisURL == "" {
		return infrasession.NewMemoryStore(time.Minute), nil
	}
	return infrasession.NewRedisStore(ctx, cfg.RedisURL)
}

func pingDB(db *sql.DB) apihttp.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
