package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carbonova/carbonova-backend/api/routes"
	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/handlers"
	mongorepo "github.com/carbonova/carbonova-backend/internal/repositories/mongodb"
	"github.com/carbonova/carbonova-backend/internal/scheduler"
	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/carbonova/carbonova-backend/pkg/geocode"
	"github.com/carbonova/carbonova-backend/pkg/jwt"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	mongodb "github.com/carbonova/carbonova-backend/pkg/mongodb"
	"github.com/carbonova/carbonova-backend/pkg/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		logger.Fatal("Failed to initialise logger: ", err)
	}

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.WithError(err).Error("Error disconnecting from MongoDB")
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("Failed to create MongoDB indexes: ", err)
	}

	userRepo := mongorepo.NewUserRepository(db)
	profileRepo := mongorepo.NewProfileRepository(db)
	activityTypeRepo := mongorepo.NewActivityTypeRepository(db)
	activityRepo := mongorepo.NewActivityRepository(db)
	voucherRepo := mongorepo.NewVoucherRepository(db)
	redemptionRepo := mongorepo.NewRedemptionRepository(db)
	ledgerRepo := mongorepo.NewPointTransactionRepository(db)
	revokedRepo := mongorepo.NewRevokedTokenRepository(db)

	awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Storage.Region, cfg.Storage.Endpoint)
	if err != nil {
		logger.Fatal("Failed to load AWS configuration: ", err)
	}
	proofStore := storage.NewS3Store(
		storage.NewS3Client(awsCfg, cfg.Storage.Endpoint),
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		cfg.Storage.Endpoint,
		cfg.Storage.PublicBaseURL,
	)

	geocoder := geocode.NewClient(
		cfg.Geocode.BaseURL,
		cfg.Geocode.UserAgent,
		time.Duration(cfg.Geocode.TimeoutSeconds)*time.Second,
		cfg.Geocode.MockAPI,
	)
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	authService := services.NewAuthService(userRepo, profileRepo, revokedRepo, tokens, cfg.Auth)
	activityService := services.NewActivityService(activityTypeRepo, activityRepo, proofStore, geocoder, cfg.Activity)
	dashboardService := services.NewDashboardService(profileRepo, activityRepo, activityTypeRepo, cfg.Activity)
	rewardService := services.NewRewardService(profileRepo, voucherRepo, redemptionRepo, ledgerRepo, mongoClient)
	reviewService := services.NewReviewService(activityRepo, activityTypeRepo, profileRepo, ledgerRepo, mongoClient)
	catalogService := services.NewCatalogService(activityTypeRepo, voucherRepo)
	expiryService := services.NewExpiryService(voucherRepo, redemptionRepo, mongoClient)

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		ActivityHandler:  handlers.NewActivityHandler(activityService, cfg.Activity.MaxProofBytes),
		DashboardHandler: handlers.NewDashboardHandler(dashboardService),
		RewardHandler:    handlers.NewRewardHandler(rewardService),
		ReviewHandler:    handlers.NewReviewHandler(reviewService),
		CatalogHandler:   handlers.NewCatalogHandler(catalogService),
		Tokens:           tokens,
		Revocations:      authService,
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	var expiryScheduler *scheduler.ExpiryScheduler
	if cfg.Scheduler.Enabled {
		expiryScheduler = scheduler.NewExpiryScheduler(expiryService, cfg.Scheduler.ExpiryCron)
		if err := expiryScheduler.Start(); err != nil {
			logger.Fatal("Failed to start voucher expiry scheduler: ", err)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	logger.WithFields(logrus.Fields{"port": cfg.Server.Port, "database": cfg.MongoDB.Database}).Info("Server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if expiryScheduler != nil {
		expiryScheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exiting")
}
