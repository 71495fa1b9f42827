// Package passgen собирает приложение: хранилище, кэш, платёжный шлюз
// или его симулятор, брокер событий, сервисы и HTTP-сервер.
package passgen

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/passgen-saas/internal/cache"
	"github.com/magabrotheeeer/passgen-saas/internal/config"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/jwt"
	"github.com/magabrotheeeer/passgen-saas/internal/lib/sl"
	"github.com/magabrotheeeer/passgen-saas/internal/migrations"
	"github.com/magabrotheeeer/passgen-saas/internal/paymentprovider"
	"github.com/magabrotheeeer/passgen-saas/internal/rabbitmq"
	adminservice "github.com/magabrotheeeer/passgen-saas/internal/services/admin"
	authservice "github.com/magabrotheeeer/passgen-saas/internal/services/auth"
	entitlementservice "github.com/magabrotheeeer/passgen-saas/internal/services/entitlement"
	generatorservice "github.com/magabrotheeeer/passgen-saas/internal/services/generator"
	paymentservice "github.com/magabrotheeeer/passgen-saas/internal/services/payment"
	"github.com/magabrotheeeer/passgen-saas/internal/storage/repository"
)

// App держит HTTP-сервер и ресурсы, закрываемые при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection // nil, если брокер не настроен
}

// New инициализирует все зависимости приложения. Redis и RabbitMQ
// опциональны: пустой адрес отключает кэш, пустая строка подключения —
// публикацию событий. Пустой секрет шлюза включает симулятор платежей.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	var accountCache *cache.Cache
	if cfg.RedisConnection.AddressRedis != "" {
		accountCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	var authCache authservice.AccountCache
	var entitlementCache entitlementservice.AccountCache
	var adminCache adminservice.AccountCache
	if accountCache != nil {
		authCache = accountCache
		entitlementCache = accountCache
		adminCache = accountCache
	}

	authService := authservice.New(db, authCache, jwtMaker, logger)
	if err = authService.EnsureAdmin(ctx, cfg.AdminBootstrap); err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var publisher entitlementservice.EventPublisher
	if cfg.RabbitMQ.ConnectionString != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.ConnectionString, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetEventQueues())
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	}

	entitlementService := entitlementservice.New(db, entitlementCache, publisher, logger)

	var gateway paymentprovider.Gateway
	var sim *paymentprovider.Simulator
	if cfg.UseSimulator() {
		sim = paymentprovider.NewSimulator(cfg.Gateway.BaseURL, cfg.Simulator.MaturationWindow,
			cfg.Simulator.AmountMinor, cfg.Simulator.Currency, nil)
		gateway = sim
		logger.Info("payment gateway secret is empty, using simulator",
			slog.Duration("maturation_window", cfg.Simulator.MaturationWindow))
	} else {
		gateway = paymentprovider.NewClient(cfg.Gateway)
	}

	paymentService := paymentservice.New(db, gateway, sim, entitlementService, logger)
	generatorService := generatorservice.New(logger)
	adminService := adminservice.New(db, adminCache, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, generatorService, paymentService, adminService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста,
// после чего останавливает сервер и закрывает ресурсы.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
