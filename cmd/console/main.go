package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/ams-passport/internal/audit"
	"github.com/xela07ax/ams-passport/internal/console/handler"
	"github.com/xela07ax/ams-passport/internal/console/server"
	"github.com/xela07ax/ams-passport/internal/console/service"
	"github.com/xela07ax/ams-passport/internal/infra"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
	"github.com/xela07ax/ams-passport/internal/repository/postgres"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// 2. Инфраструктура и ресурсы
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("postgres pool init failed", zap.Error(err))
	}
	defer pool.Close()

	adminRepo := postgres.NewAdminRepo(pool)
	roleRepo := postgres.NewRoleRepo(pool)
	auditRepo := postgres.NewAuditRepo(pool)

	// База может подниматься параллельно с нами (docker-compose) —
	// пингуем с ретраями, прежде чем принимать трафик
	pingCtx, pingCancel := context.WithTimeout(ctx, 30*time.Second)
	r := retry.New(retry.Context(pingCtx), retry.Attempts(5))
	if err := r.Do(func() error { return adminRepo.Ping(pingCtx) }); err != nil {
		pingCancel()
		logger.Fatal("database unreachable", zap.Error(err))
	}
	pingCancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 3. Аудит (буферизованная запись в Postgres)
	recorder := audit.NewRecorder(auditRepo, logger,
		cfg.Audit.BufferSize, cfg.Audit.BatchSize, cfg.Audit.FlushInterval)
	recorder.Start()

	// 4. Ядро аутентификации: один секрет на выпуск и проверку
	secret := []byte(cfg.Auth.SecretKey)
	encoder := auth.NewPasswordEncoder(cfg.Auth.BcryptCost)
	issuer := auth.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
	validator := auth.NewBaseValidator(secret)

	// 5. Сервисы и хендлеры (Dependency Injection)
	authService := service.NewAuthService(adminRepo, encoder, issuer, validator,
		cfg.Auth.LoginRPS, cfg.Auth.LoginBurst, recorder, logger)
	adminService := service.NewAdminService(adminRepo, encoder, rdb, recorder, logger)
	roleService := service.NewRoleService(roleRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	roleHandler := handler.NewRoleHandler(roleService, logger)

	// 6. Метрики и HTTP-сервер
	reg := prometheus.NewRegistry()
	metrics := server.NewMetrics(reg)
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	console := server.NewConsoleServer(logger, metrics, validator,
		authHandler, adminHandler, roleHandler, metricsHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      console,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("console API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("console API stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Дописываем хвост аудита перед выходом
	recorder.Stop()
	logger.Info("console API exited properly")
}
