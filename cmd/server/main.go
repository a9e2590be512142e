package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/primedclinic/intake-service/internal/address"
	"github.com/primedclinic/intake-service/internal/authflag"
	"github.com/primedclinic/intake-service/internal/config"
	"github.com/primedclinic/intake-service/internal/events"
	"github.com/primedclinic/intake-service/internal/export"
	"github.com/primedclinic/intake-service/internal/handlers"
	"github.com/primedclinic/intake-service/internal/intake"
	"github.com/primedclinic/intake-service/internal/services"
	"github.com/primedclinic/intake-service/internal/store"
	"github.com/primedclinic/intake-service/internal/upstream"
	"github.com/primedclinic/intake-service/internal/utils"
	"github.com/primedclinic/intake-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := logger.(*utils.SlogLogger).GetSlogLogger()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}
	defer redisClient.Close()

	clinic, err := upstream.NewClient(cfg.ClinicAPIURL)
	if err != nil {
		log.Fatalf("failed to init clinic api client: %v", err)
	}
	places := address.NewClient(cfg.PlacesAPIURL, cfg.PlacesAPIKey)

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.EventsTopic,
		Logger:       slogger,
	})
	if err != nil {
		// Events are best-effort; the intake flow works without them.
		logger.Warn("Event publisher unavailable, continuing without events", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}
	var eventPublisher events.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	progressStore := store.NewRedisProgressStore(redisClient, cfg.ProgressKeyBase)
	sessionStore := store.NewRedisSessionStore(redisClient)
	leadRepo := store.NewLeadRepository(db)
	subRepo := store.NewSubmissionRepository(db)
	validator := intake.NewValidator()
	flags := authflag.New()

	questionnaireService := services.NewQuestionnaireService(
		clinic, progressStore, sessionStore, subRepo, eventPublisher, slogger)
	intakeService := services.NewIntakeService(
		clinic, places, sessionStore, validator, eventPublisher, slogger)
	contactService := services.NewContactService(
		leadRepo, validator, eventPublisher, slogger)
	exportService := export.NewService(leadRepo, subRepo)

	manager := handlers.NewHandlerManager(
		handlers.NewQuestionnaireHandler(questionnaireService, logger),
		handlers.NewIntakeHandler(intakeService, logger),
		handlers.NewContactHandler(contactService, logger),
		handlers.NewExportHandler(exportService, logger),
		handlers.NewAuthHandler(flags, logger),
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	manager.SetupRoutes(router, logger)

	logger.Info("Starting intake service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
