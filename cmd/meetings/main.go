package main

import (
	"context"
	"errors"

	consultantsrepo "tradedesk/internal/consultants/repository"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/handler"
	"tradedesk/internal/meetings/repository"
	"tradedesk/internal/meetings/service"
	"tradedesk/internal/meetings/validator"
	"tradedesk/pkg/app"
	"tradedesk/pkg/cache"
	"tradedesk/pkg/config"
	"tradedesk/pkg/kafka"
	kafka_config "tradedesk/pkg/kafka/config"
	kafkamiddleware "tradedesk/pkg/kafka/middleware"
)

const ServiceName = "meetings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.RequireJWTSecret(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Meetings service")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.MeetingEventsTopic, kafkaCfg.DLQTopic(cfg.MeetingEventsTopic), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	}

	meetingCache := cache.New(cfg.Client.Redis, cfg.CachePrefix, cfg.CacheTTL, cfg.Log)
	meetingService := initServices(cfg, meetingCache, events.NewKafkaPublisher(producer, ServiceName))

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.MeetingEventsTopic,
		cfg.MeetingEventsGroupID,
		kafkaCfg.DLQTopic(cfg.MeetingEventsTopic),
		events.CacheInvalidationHandler(meetingCache, cfg.Log.WithComponent("meeting-events")),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Meeting events consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, newHealthHandler(cfg), handler.NewMeetingHandler(meetingService, cfg.Log))
	serverApp.OnShutdown(func(ctx context.Context) {
		stopConsumer()
		select {
		case <-consumerDone:
		case <-ctx.Done():
		}
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, meetingCache cache.MeetingCache, publisher events.Publisher) service.MeetingService {
	meetingService := service.NewMeetingService(service.Dependencies{
		Meetings:    repository.NewMongoMeetingRepository(cfg),
		Consultants: consultantsrepo.NewMongoConsultantRepository(cfg),
		Validator:   validator.NewBookingValidator(cfg.Log),
		Cache:       meetingCache,
		Publisher:   publisher,
		Location:    cfg.Location,
		Log:         cfg.Log,
	})

	cfg.Log.Info("Meetings service initialized", "database", cfg.MongoDatabaseName, "time_zone", cfg.TimeZone)
	return meetingService
}

func newHealthHandler(cfg *config.Config) *handler.HealthHandler {
	checks := []handler.DependencyCheck{{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return cfg.Client.Mongo.Ping(ctx, nil) },
	}}
	if cfg.Client.Redis != nil {
		checks = append(checks, handler.DependencyCheck{
			Name:     "redis",
			Ping:     func(ctx context.Context) error { return cfg.Client.Redis.Ping(ctx).Err() },
			Optional: true,
		})
	}
	return handler.NewHealthHandler(cfg.Log, checks...)
}
