package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	executeBookingHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/execute_booking"
	getOrderHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/get_order"
	getProviderOrdersHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/get_provider_orders"
	getUserOrdersHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/get_user_orders"
	paymentWebhookHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/payment_webhook"
	submitQuoteHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/submit_quote"
	transitionOrderHandler "github.com/m04kA/SMC-OrderService/internal/api/handlers/transition_order"
	"github.com/m04kA/SMC-OrderService/internal/api/middleware"
	"github.com/m04kA/SMC-OrderService/internal/config"
	capacityRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/capacity"
	orderRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/order"
	sagaRunRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/sagarun"
	webhookEventRepo "github.com/m04kA/SMC-OrderService/internal/infra/storage/webhookevent"
	"github.com/m04kA/SMC-OrderService/internal/integrations/paymentgw"
	capacityService "github.com/m04kA/SMC-OrderService/internal/service/capacity"
	chargingService "github.com/m04kA/SMC-OrderService/internal/service/charging"
	ordersService "github.com/m04kA/SMC-OrderService/internal/service/orders"
	"github.com/m04kA/SMC-OrderService/internal/service/statemachine"
	executeBookingUC "github.com/m04kA/SMC-OrderService/internal/usecase/execute_booking"
	handleEventUC "github.com/m04kA/SMC-OrderService/internal/usecase/handle_event"
	submitQuoteUC "github.com/m04kA/SMC-OrderService/internal/usecase/submit_quote"
	transitionOrderUC "github.com/m04kA/SMC-OrderService/internal/usecase/transition_order"
	"github.com/m04kA/SMC-OrderService/internal/worker/graceperiod"
	"github.com/m04kA/SMC-OrderService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OrderService/pkg/logger"
	"github.com/m04kA/SMC-OrderService/pkg/metrics"
	"github.com/m04kA/SMC-OrderService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-OrderService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка БД с метриками (nil collector работает прозрачно)
	wrappedDB := dbmetrics.Wrap(db, metricsCollector)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	capacityRepository := capacityRepo.NewRepository(wrappedDB)
	orderRepository := orderRepo.NewRepository(wrappedDB)
	sagaRunRepository := sagaRunRepo.NewRepository(wrappedDB)
	webhookEventRepository := webhookEventRepo.NewRepository(wrappedDB)

	// Инициализируем клиент платежного шлюза: breaker + квота поверх HTTP
	gatewayClient := paymentgw.NewClient(
		cfg.PaymentGateway.URL,
		cfg.PaymentGateway.APIKey,
		time.Duration(cfg.PaymentGateway.Timeout)*time.Second,
		log,
	)
	gateway := paymentgw.NewProtectedClient(gatewayClient, paymentgw.ProtectionConfig{
		BreakerMaxRequests: cfg.PaymentGateway.BreakerMaxRequests,
		BreakerInterval:    time.Duration(cfg.PaymentGateway.BreakerIntervalSeconds) * time.Second,
		BreakerCooldown:    time.Duration(cfg.PaymentGateway.BreakerCooldownSeconds) * time.Second,
		BreakerMinRequests: cfg.PaymentGateway.BreakerMinRequests,
		FailureRatio:       cfg.PaymentGateway.BreakerFailureRatio,
		RatePerSecond:      cfg.PaymentGateway.RateLimitPerSecond,
		RateBurst:          cfg.PaymentGateway.RateLimitBurst,
	}, metricsCollector, log)
	log.Info("Payment gateway client initialized (url=%s, rate=%.0f/s)",
		cfg.PaymentGateway.URL, cfg.PaymentGateway.RateLimitPerSecond)

	// Инициализируем сервисы
	capacityEngine := capacityService.NewService(capacityRepository, txMgr, log)
	orderMachine := statemachine.NewMachine(orderRepository, txMgr, cfg.Orders.VarianceThresholdPercent, log)
	gracePeriod := time.Duration(cfg.Orders.GracePeriodHours) * time.Hour
	timeProvider := &executeBookingUC.RealTimeProvider{}
	charging := chargingService.NewService(orderMachine, gateway, timeProvider, gracePeriod, log)
	ordersSvc := ordersService.NewService(orderRepository, log)

	// Инициализируем use cases
	executeBookingUseCase := executeBookingUC.New(
		capacityEngine,
		orderRepository,
		sagaRunRepository,
		gateway,
		orderMachine,
		timeProvider,
		executeBookingUC.Config{
			ValidationCharge:       cfg.Saga.ValidationCharge,
			ValidationChargeAmount: cfg.Saga.ValidationChargeAmount,
			RunTTL:                 time.Duration(cfg.Saga.RunTTLSeconds) * time.Second,
		},
		metricsCollector,
		log,
	)
	submitQuoteUseCase := submitQuoteUC.New(orderRepository, orderMachine, charging, log)
	transitionOrderUseCase := transitionOrderUC.New(orderRepository, orderMachine, charging, capacityEngine, log)
	handleEventUseCase := handleEventUC.New(
		webhookEventRepository,
		orderRepository,
		sagaRunRepository,
		orderMachine,
		charging,
		capacityEngine,
		timeProvider,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	executeBooking := executeBookingHandler.NewHandler(executeBookingUseCase, log)
	getOrder := getOrderHandler.NewHandler(ordersSvc, log)
	getUserOrders := getUserOrdersHandler.NewHandler(ordersSvc, log)
	getProviderOrders := getProviderOrdersHandler.NewHandler(ordersSvc, log)
	transitionOrder := transitionOrderHandler.NewHandler(transitionOrderUseCase, log)
	submitQuote := submitQuoteHandler.NewHandler(submitQuoteUseCase, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(handleEventUseCase, cfg.PaymentGateway.WebhookToken, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Входящие события платежного шлюза (защищены webhook токеном)
	api.HandleFunc("/webhooks/payment", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Заказы ---
	// Создание заказа (сага бронирования)
	protected.HandleFunc("/orders", executeBooking.Handle).Methods(http.MethodPost)

	// Карточка заказа и журнал переходов
	protected.HandleFunc("/orders/{orderId}", getOrder.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{orderId}/events", getOrder.HandleEvents).Methods(http.MethodGet)

	// Действие над заказом (start_route, begin_service, approve_quote, cancel, ...)
	protected.HandleFunc("/orders/{orderId}/actions", transitionOrder.Handle).Methods(http.MethodPost)

	// Выставление финальной котировки партнером
	protected.HandleFunc("/orders/{orderId}/quote", submitQuote.Handle).Methods(http.MethodPost)

	// --- Списки ---
	// История заказов клиента
	protected.HandleFunc("/users/{userId}/orders", getUserOrders.Handle).Methods(http.MethodGet)

	// Заказы партнера
	protected.HandleFunc("/providers/{providerId}/orders", getProviderOrders.Handle).Methods(http.MethodGet)

	// Фоновый обходчик истекших grace-периодов
	workerCtx, stopWorker := context.WithCancel(context.Background())
	graceWorker := graceperiod.NewWorker(
		orderRepository,
		orderMachine,
		time.Duration(cfg.Orders.GraceWorkerIntervalSeconds)*time.Second,
		100,
		log,
	)
	go graceWorker.Run(workerCtx)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
