package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kinesis"
	"github.com/example/ec-storefront/internal/logger"
	"github.com/example/ec-storefront/internal/notification"
)

var (
	notificationHandler *notification.Handler
	log                 *zap.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err = logger.New(logger.Options{Production: true})
	if err != nil {
		panic(err)
	}
	log = log.Named("lambda")

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	notificationHandler = notification.NewHandler(emailSvc, log)

	log.Info("initialized", zap.String("smtp", cfg.SMTPHost), zap.Int("smtp_port", cfg.SMTPPort))
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	records, failures := kinesis.Batch(kinesisEvent)
	for _, f := range failures {
		log.Warn("failed to convert record", zap.String("sequence_number", f.ItemIdentifier))
	}

	for _, r := range records {
		if err := notificationHandler.HandleMessage(ctx, r.Message); err != nil {
			log.Error("failed to process record", zap.String("sequence_number", r.SequenceNumber), zap.Error(err))
			failures = append(failures, events.KinesisBatchItemFailure{ItemIdentifier: r.SequenceNumber})
		}
	}

	log.Info("batch processed",
		zap.Int("records", len(kinesisEvent.Records)),
		zap.Int("failed", len(failures)),
	)
	return events.KinesisEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}
