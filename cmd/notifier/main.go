package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(logger.Options{Production: cfg.IsProduction(), File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting order notifier",
		zap.Strings("kafka", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaOrderTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("smtp", cfg.SMTPHost),
		zap.Int("smtp_port", cfg.SMTPPort),
		zap.String("from", cfg.SMTPFrom),
	)

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, log)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaOrderTopic,
		GroupID: cfg.KafkaGroupID,
	}, log.Named("consumer"))
	defer consumer.Close()

	go func() {
		log.Info("listening for orders", zap.String("topic", cfg.KafkaOrderTopic))
		if err := consumer.Consume(ctx, handler.HandleMessage); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	cancel()
}
