package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	consultantsrepo "tradedesk/internal/consultants/repository"
	"tradedesk/internal/meetings/events"
	"tradedesk/internal/meetings/repository"
	"tradedesk/internal/meetings/sweeper"
	"tradedesk/pkg/config"
	"tradedesk/pkg/kafka"
	kafka_config "tradedesk/pkg/kafka/config"
	kafkamiddleware "tradedesk/pkg/kafka/middleware"
)

const JobName = "meeting-sweeper"

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

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

	s := sweeper.NewSweeper(
		repository.NewMongoMeetingRepository(cfg),
		consultantsrepo.NewMongoConsultantRepository(cfg),
		events.NewKafkaPublisher(producer, JobName),
		cfg.SweepInterval,
		cfg.Location,
		cfg.Log.WithComponent("sweeper"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Start(ctx)
	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received")

	s.Stop()
	if err := producer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka producer", "error", err)
	}
	cfg.GracefulShutdown()
}
