package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	createBookingHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/create_booking"
	createServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/create_service"
	deleteBookingHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/delete_booking"
	deleteServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/delete_service"
	getAvailabilityHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_booking"
	getSettingsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_settings"
	listBookingsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_bookings"
	listCustomersHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_customers"
	listServicesHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_services"
	updateBookingHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_booking"
	updateServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_service"
	updateSettingsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_settings"
	"github.com/m04kA/SMC-CarWashBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashBooking/internal/config"
	settingsCache "github.com/m04kA/SMC-CarWashBooking/internal/infra/cache/settings"
	bookingRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/service"
	settingsRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/settings"
	vehicleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/vehicle"
	bookingsService "github.com/m04kA/SMC-CarWashBooking/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-CarWashBooking/internal/service/catalog"
	customersService "github.com/m04kA/SMC-CarWashBooking/internal/service/customers"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/identity"
	settingsService "github.com/m04kA/SMC-CarWashBooking/internal/service/settings"
	createBookingUC "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/metrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
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

	log.Info("Starting SMC-CarWashBooking...")
	log.Info("Configuration loaded from %s", *configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка просто прокидывает вызовы в *sql.DB
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db)
	}

	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxRetries(cfg.Booking.MaxTxRetries),
		txmanager.WithBaseDelay(cfg.Booking.RetryBaseDelay()),
		txmanager.WithRetryObserver(metricsCollector),
	)

	// Кэш настроек в Redis (опционально)
	var cache settingsService.SettingsCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// Кэш не обязателен: доступность продолжит читать настройки из БД
			log.Warn("Redis is unavailable at %s: %v", cfg.Redis.Addr, err)
		}
		cancel()

		cache = settingsCache.NewCache(rdb, cfg.Redis.SettingsTTLDuration())
		log.Info("Settings cache enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.SettingsTTLDuration())
	}

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	customerRepository := customerRepo.NewRepository(wrappedDB)
	vehicleRepository := vehicleRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)

	// Сервисы
	settingsSvc := settingsService.NewService(settingsRepository, cache, txMgr, log)
	bookingSvc := bookingsService.NewService(bookingRepository, settingsRepository, txMgr, log)
	catalogSvc := catalogService.NewService(serviceRepository, log)
	customersSvc := customersService.NewService(customerRepository, vehicleRepository, log)
	resolver := identity.NewResolver(customerRepository, vehicleRepository, cfg.Booking.PhoneRegion, log)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		serviceRepository,
		resolver,
		txMgr,
		metricsCollector,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(bookingRepository, settingsSvc, log)

	// Handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	listPublicServices := listServicesHandler.NewHandler(catalogSvc, true, log)
	getSettings := getSettingsHandler.NewHandler(settingsSvc, log)

	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBooking := updateBookingHandler.NewHandler(bookingSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingSvc, log)
	listAllServices := listServicesHandler.NewHandler(catalogSvc, false, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)
	updateSettings := updateSettingsHandler.NewHandler(settingsSvc, log)
	listCustomers := listCustomersHandler.NewHandler(customersSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services", listPublicServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)

	var createBookingRoute http.Handler = http.HandlerFunc(createBooking.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		createBookingRoute = limiter.Limit(createBookingRoute)
		log.Info("Booking rate limit: %d/min, burst %d", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}
	api.Handle("/bookings", createBookingRoute).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (X-Admin-Key)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Admin.APIKey))
	if cfg.Admin.APIKey == "" {
		log.Warn("Admin API key is empty, admin routes will reject every request")
	}

	// --- Бронирования ---
	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId}", updateBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{bookingId}", deleteBooking.Handle).Methods(http.MethodDelete)

	// --- Услуги ---
	admin.HandleFunc("/services", listAllServices.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services/{serviceId}", updateService.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/services/{serviceId}", deleteService.Handle).Methods(http.MethodDelete)

	// --- Настройки и клиенты ---
	admin.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/customers", listCustomers.Handle).Methods(http.MethodGet)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
