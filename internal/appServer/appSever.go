package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gericht/reservation-service/config"
	repository "github.com/gericht/reservation-service/internal/database/postgres"
	redisrepo "github.com/gericht/reservation-service/internal/database/redis"
	"github.com/gericht/reservation-service/internal/service"
	"github.com/gericht/reservation-service/internal/transport"
	"github.com/gericht/reservation-service/internal/worker"

	"github.com/gericht/reservation-service/pkg/botpress"
	"github.com/gericht/reservation-service/pkg/postgres"
	"github.com/gericht/reservation-service/pkg/queue"
	"github.com/gericht/reservation-service/pkg/redis"
	"github.com/gericht/reservation-service/pkg/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	reservationRepo := repository.NewReservationRepository(db)
	botpressRepo := repository.NewBotpressReservationRepository(db)

	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	userRepo, err := redisrepo.NewUserRepository(redisClient)
	if err != nil {
		logrus.Fatalf("Failed to initialize user repository: %v", err)
	}

	// Initialize Botpress client
	botpressClient := botpress.NewClient(&cfg.Botpress)
	if cfg.Botpress.BaseURL == "" {
		logrus.Warn("Botpress base URL not provided, sync endpoints will fail until configured")
	}

	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	if cfg.Redis.URL != "" {
		redisConfig := &queue.RedisQueueConfig{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		retryManager := queue.NewRetryManager(3, 5*time.Second)
		dlqHandler := queue.NewDefaultDLQHandler(redisClient, "reservation_service:dlq")

		redisQueue, err = queue.NewRedisQueue(redisConfig, retryManager, dlqHandler)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
			redisQueue = nil
		} else {
			logrus.Info("Redis queue initialized")
			// Создаем адаптер для очереди
			taskPublisher = service.NewQueueAdapter(redisQueue)
		}
	}

	// Initialize services
	tokenManager := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	reservationService := service.NewReservationService(
		reservationRepo, botpressRepo, userRepo, taskPublisher,
		cfg.Booking.SlotCapacity, cfg.Botpress.AutoSync,
	)
	syncService := service.NewBotpressSyncService(reservationRepo, botpressRepo, botpressClient)
	userService := service.NewUserService(userRepo, reservationRepo, tokenManager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userSyncInterval := cfg.Sync.UserSyncInterval
	if userSyncInterval <= 0 {
		userSyncInterval = 24 * time.Hour
	}

	// Initialize task handler if queue is available
	if redisQueue != nil {
		taskHandler := queue.NewTaskHandler(userService, syncService)

		// Start queue consumer
		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")

		// Scheduler publishes the daily user sync task
		syncScheduler := scheduler.NewScheduler(redisQueue, userSyncInterval)
		go syncScheduler.Start(ctx)
		logrus.Info("User sync scheduler started")
	} else {
		// Without a queue the worker runs the sync directly
		userSyncWorker := worker.NewUserSyncWorker(userService, userSyncInterval)
		go userSyncWorker.Start(ctx)
		logrus.Info("User sync worker started")
	}

	// Initialize handlers
	reservationHandler := transport.NewReservationHandler(reservationService)
	botpressHandler := transport.NewBotpressHandler(reservationService, syncService, cfg.Botpress.APIKey)
	adminHandler := transport.NewAdminHandler(reservationService, syncService, userService, cfg.Admin.CreationKey)
	authHandler := transport.NewAuthHandler(userService)

	// Setup HTTP server
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(reservationHandler, botpressHandler, adminHandler, authHandler, tokenManager)
		if err := srv.Run(cfg, router); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if redisQueue != nil {
		if err := redisQueue.Close(); err != nil {
			logrus.Errorf("error occured on queue shutting down: %s", err.Error())
		}
	}
}
