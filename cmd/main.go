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

	cancelBookingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/cancel_booking"
	cancelOfferingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/cancel_offering"
	createBookingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/create_booking"
	createOfferingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/create_offering"
	getBookingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/get_customer_bookings"
	getOfferingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/get_offering"
	getOfferingBookingsHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/get_offering_bookings"
	listOfferingsHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/list_offerings"
	markBookingDoneHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/mark_booking_done"
	transitionOfferingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/transition_offering"
	updateBookingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/update_booking"
	updateOfferingHandler "github.com/m04kA/SMC-OfferingService/internal/api/handlers/update_offering"
	"github.com/m04kA/SMC-OfferingService/internal/api/middleware"
	"github.com/m04kA/SMC-OfferingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/booking"
	offeringRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/offering"
	sequenceRepo "github.com/m04kA/SMC-OfferingService/internal/infra/storage/sequence"
	"github.com/m04kA/SMC-OfferingService/internal/service/allocation"
	bookingsService "github.com/m04kA/SMC-OfferingService/internal/service/bookings"
	offeringsService "github.com/m04kA/SMC-OfferingService/internal/service/offerings"
	cancelBookingUC "github.com/m04kA/SMC-OfferingService/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-OfferingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OfferingService/pkg/logger"
	"github.com/m04kA/SMC-OfferingService/pkg/metrics"
	"github.com/m04kA/SMC-OfferingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-OfferingService/pkg/txmanager"
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

	log.Info("Starting SMC-OfferingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		offeringRepository *offeringRepo.Repository
		sequenceRepository *sequenceRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		offeringRepository = offeringRepo.NewRepository(wrappedDB)
		sequenceRepository = sequenceRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		offeringRepository = offeringRepo.NewRepository(db)
		sequenceRepository = sequenceRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем аллокатор мест
	allocator := allocation.NewAllocator(bookingRepository, log)

	// Инициализируем сервисы
	offeringSvc := offeringsService.NewService(
		offeringRepository,
		bookingRepository,
		txMgr,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		offeringRepository,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		offeringRepository,
		sequenceRepository,
		allocator,
		txMgr,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		offeringRepository,
		allocator,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBooking := updateBookingHandler.NewHandler(bookingSvc, log)
	markBookingDone := markBookingDoneHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getOfferingBookings := getOfferingBookingsHandler.NewHandler(bookingSvc, log)
	createOffering := createOfferingHandler.NewHandler(offeringSvc, log)
	getOffering := getOfferingHandler.NewHandler(offeringSvc, log)
	listOfferings := listOfferingsHandler.NewHandler(offeringSvc, log)
	updateOffering := updateOfferingHandler.NewHandler(offeringSvc, log)
	transitionOffering := transitionOfferingHandler.NewHandler(offeringSvc, log)
	cancelOffering := cancelOfferingHandler.NewHandler(offeringSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Сквозной request-id для трассировки запросов в логах
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог предложений
	api.HandleFunc("/offerings", listOfferings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/offerings/{offeringId}", getOffering.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования (confirmed или waitlisted)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Изменение черновика бронирования
	protected.HandleFunc("/bookings/{bookingId}", updateBooking.Handle).Methods(http.MethodPut)

	// Отмена бронирования (с продвижением очереди)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Завершение подтверждённого бронирования
	protected.HandleFunc("/bookings/{bookingId}/done", markBookingDone.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// --- Управление предложениями (для администраторов) ---
	// Создание черновика предложения
	protected.HandleFunc("/offerings", createOffering.Handle).Methods(http.MethodPost)

	// Изменение черновика предложения
	protected.HandleFunc("/offerings/{offeringId}", updateOffering.Handle).Methods(http.MethodPut)

	// Переходы жизненного цикла
	protected.HandleFunc("/offerings/{offeringId}/publish",
		transitionOffering.HandlePublish).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/close-registration",
		transitionOffering.HandleCloseRegistration).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/complete",
		transitionOffering.HandleComplete).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/reset-draft",
		transitionOffering.HandleResetDraft).Methods(http.MethodPost)

	// Отмена предложения с каскадной отменой бронирований
	protected.HandleFunc("/offerings/{offeringId}/cancel", cancelOffering.Handle).Methods(http.MethodPost)

	// Архивация (скрытие из выдачи без смены состояния)
	protected.HandleFunc("/offerings/{offeringId}/archive",
		transitionOffering.HandleArchive).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/unarchive",
		transitionOffering.HandleUnarchive).Methods(http.MethodPost)

	// Список бронирований предложения
	protected.HandleFunc("/offerings/{offeringId}/bookings",
		getOfferingBookings.Handle).Methods(http.MethodGet)

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

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
