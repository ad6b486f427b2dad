package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blood-donate.backend/internal/config"
	domainrepos "blood-donate.backend/internal/domain/repositories"
	"blood-donate.backend/internal/infrastructure/datasources/postgres"
	"blood-donate.backend/internal/infrastructure/jobs"
	"blood-donate.backend/internal/infrastructure/mongorepo"
	"blood-donate.backend/internal/infrastructure/payment"
	"blood-donate.backend/internal/infrastructure/repositories"
	"blood-donate.backend/internal/interfaces/http/handlers"
	"blood-donate.backend/internal/interfaces/http/middleware"
	"blood-donate.backend/internal/usecases"
	"blood-donate.backend/pkg/jwt"
	"blood-donate.backend/pkg/logger"
	"blood-donate.backend/pkg/metrics"
	"blood-donate.backend/pkg/mongodb"
	"blood-donate.backend/pkg/redis"
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openPostgres    = postgres.NewConnection
	migratePostgres = postgres.Migrate
	newConnector    = mongodb.NewConnector
	runServer       = func(srv *http.Server) error { return srv.ListenAndServe() }
	signalContext   = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// stores is the repository set for the configured driver.
type stores struct {
	name     string
	users    domainrepos.UserRepository
	requests domainrepos.DonationRequestRepository
	fundings domainrepos.FundingRepository
	uow      domainrepos.UnitOfWork
	prober   jobs.StoreProber
	close    func(ctx context.Context) error
}

type gormProber struct {
	db *gorm.DB
}

func (p gormProber) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, p.db)
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := openPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := migratePostgres(db); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return &stores{
			name:     config.DriverPostgres,
			users:    repositories.NewUserRepository(db),
			requests: repositories.NewDonationRequestRepository(db),
			fundings: repositories.NewFundingRepository(db),
			uow:      repositories.NewUnitOfWork(db),
			prober:   gormProber{db: db},
			close: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case config.DriverMongo:
		// Connects lazily on first use; startup does not wait for the cluster.
		conn := newConnector(mongodb.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			OnConnect:      mongorepo.EnsureIndexes,
		})
		return &stores{
			name:     config.DriverMongo,
			users:    mongorepo.NewUserRepository(conn, cfg.Mongo.OpTimeout),
			requests: mongorepo.NewDonationRequestRepository(conn, cfg.Mongo.OpTimeout),
			fundings: mongorepo.NewFundingRepository(conn, cfg.Mongo.OpTimeout),
			uow:      mongorepo.NewUnitOfWork(),
			prober:   conn,
			close:    conn.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	metrics.Init()

	// Redis only backs checkout idempotency; the service runs without it.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Warn(ctx, "Redis unavailable, idempotency replay disabled", zap.Error(err))
	} else {
		logger.Info(ctx, "Redis initialized")
		defer func() { _ = redis.Close() }()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Error(closeCtx, "Failed to close store", zap.Error(err))
		}
	}()
	logger.Info(ctx, "Store configured", zap.String("driver", st.name))

	if cfg.Firebase.ProjectID == "" {
		logger.Warn(ctx, "FIREBASE_PROJECT_ID is empty, authenticated routes will answer 503")
	}
	keySet := jwt.NewKeySet(cfg.Firebase.JWKSURL, cfg.Firebase.KeyCacheTTL, &http.Client{Timeout: 10 * time.Second})
	identityVerifier := middleware.NewFirebaseIdentityVerifier(jwt.NewVerifier(cfg.Firebase.ProjectID, keySet))

	gateway := payment.NewStripeGateway(cfg.Stripe)

	// Usecases
	userUsecase := usecases.NewUserUsecase(st.users, st.uow)
	requestUsecase := usecases.NewDonationRequestUsecase(st.requests, st.users)
	fundingUsecase := usecases.NewFundingUsecase(st.fundings, st.users, gateway, usecases.FundingSettings{
		Currency:   cfg.Stripe.Currency,
		SiteDomain: cfg.Stripe.SiteDomain,
	})
	adminUsecase := usecases.NewAdminUsecase(st.users, st.requests, st.fundings)

	// Background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	healthJob := jobs.NewStoreHealthJob(st.prober, st.name, cfg.Health.Interval, cfg.Health.Timeout)
	go healthJob.Start(jobCtx)
	defer healthJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))

	applyCORSMiddleware(r, cfg.Server.CORSOrigins)
	registerHealthRoute(r, healthJob)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		userHandler:    handlers.NewUserHandler(userUsecase),
		requestHandler: handlers.NewDonationRequestHandler(requestUsecase),
		fundingHandler: handlers.NewFundingHandler(fundingUsecase),
		webhookHandler: handlers.NewWebhookHandler(gateway, fundingUsecase),
		adminHandler:   handlers.NewAdminHandler(userUsecase, requestUsecase, adminUsecase),
		authMiddleware: middleware.AuthMiddleware(identityVerifier),
		users:          userUsecase,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stopSignals := signalContext()
	defer stopSignals()

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Server starting",
			zap.String("port", cfg.Server.Port),
			zap.Int("routes", len(r.Routes())),
		)
		errCh <- runServer(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info(ctx, "Shutting down server")
	healthJob.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}
