package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/config"
	"github.com/carafecoffee/orderflow/internal/logging"
)

// logSender writes emails to the log instead of delivering them. Stands in
// until an email provider is wired up.
type logSender struct {
	logger *zap.Logger
}

func (s logSender) Send(email Email) error {
	s.logger.Info("email (no provider configured)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.Body),
	)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.Live())
	defer logger.Sync()

	processor := NewProcessor(logSender{logger: logger}, logger)

	// RUN_LOCAL simulates a single queue delivery for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"type":"order_confirmation","order_number":"ORD-1-TEST","email":"dev@example.com","customer_name":"Dev","total":10,"currency":"GBP"}`
		}
		event := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := processor.Handle(context.Background(), event); err != nil {
			logger.Fatal("local handler", zap.Error(err))
		}
		return
	}

	lambda.Start(processor.Handle)
}
