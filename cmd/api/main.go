package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carafecoffee/orderflow/internal/aws"
	"github.com/carafecoffee/orderflow/internal/config"
	"github.com/carafecoffee/orderflow/internal/handlers"
	"github.com/carafecoffee/orderflow/internal/logging"
	"github.com/carafecoffee/orderflow/internal/notify"
	"github.com/carafecoffee/orderflow/internal/orders"
	"github.com/carafecoffee/orderflow/internal/payment"
	"github.com/carafecoffee/orderflow/internal/webhook"
)

// How long processed webhook event ids are remembered. The gateway stops
// retrying well inside this window.
const eventTTL = 48 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Must(cfg.Live())
	defer logger.Sync()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("init aws clients", zap.Error(err))
	}

	router := handlers.NewRouter(buildHandlers(cfg, clients, logger))

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Info("running local server", zap.String("addr", addr))
		if err := router.Run(addr); err != nil {
			logger.Fatal("local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(router)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func buildHandlers(cfg *config.Config, clients *aws.AWSClients, logger *zap.Logger) handlers.HandlerConfig {
	store := orders.NewStore(clients.DynamoDB, cfg.OrdersTable)
	metrics := aws.NewMetrics(clients.CloudWatch)

	var publisher notify.Publisher
	if cfg.NotificationsQueue != "" {
		publisher = notify.NewSQSPublisher(clients.SQS, cfg.NotificationsQueue)
	} else {
		publisher = notify.LogPublisher{Logger: logger}
	}

	gatewayClient := payment.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.Username,
		cfg.Gateway.Password,
		cfg.Gateway.MerchantEntity,
		logger,
	)
	if !cfg.Gateway.Configured() {
		logger.Warn("payment gateway credentials not configured, initiation will fail")
	}

	reconciler := webhook.NewReconciler(
		store,
		eventStore(cfg, clients, logger),
		payment.NewMACValidator(cfg.Gateway.MACSecret, cfg.Live()),
		gatewayClient,
		publisher,
		metrics,
		logger,
		cfg.SiteURL,
	)

	return handlers.HandlerConfig{
		Orders:     orders.NewService(store, cfg.Shipping, publisher, logger, cfg.SiteURL),
		Initiator:  payment.NewInitiator(store, gatewayClient, logger, cfg.SiteURL),
		Reconciler: reconciler,
		Shipping:   cfg.Shipping,
		JWTSecret:  cfg.JWTSecret,
		Logger:     logger,
	}
}

func eventStore(cfg *config.Config, clients *aws.AWSClients, logger *zap.Logger) webhook.EventStore {
	switch cfg.Dedup.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Dedup.RedisAddr})
		return webhook.NewRedisStore(client, eventTTL)
	case "memory":
		logger.Warn("in-memory webhook dedup, duplicates possible across instances")
		return webhook.NewMemoryStore(cfg.Dedup.MaxEntries)
	default:
		return webhook.NewDynamoStore(clients.DynamoDB, cfg.ProcessedEventsTable, eventTTL)
	}
}
