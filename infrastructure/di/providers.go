package di

import (
	"context"
	"time"

	"pillbox-backend/application/ports"
	"pillbox-backend/application/services"
	"pillbox-backend/infrastructure/config"
	"pillbox-backend/infrastructure/persistence/dynamodb"
	"pillbox-backend/infrastructure/push"
	"pillbox-backend/infrastructure/scheduling/eventbridge"
	"pillbox-backend/interfaces/http/rest"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Records       ports.TakenRecordRepository
	Scheduler     ports.NotificationScheduler
	Push          ports.PushSender
	Notifications *services.NotificationService
	Router        *rest.Router
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideHomeLocation resolves the deployment's home time zone
func ProvideHomeLocation(cfg *config.Config) *time.Location {
	return cfg.HomeLocation()
}

// ProvideTakenRecordRepository creates the taken-record repository
func ProvideTakenRecordRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TakenRecordRepository {
	return dynamodb.NewTakenRecordRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideScheduler creates the external-scheduler adapter
func ProvideScheduler(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.NotificationScheduler {
	return eventbridge.NewScheduler(client, cfg.TargetArn, cfg.TargetRoleArn, logger)
}

// ProvidePushSender creates the push gateway client
func ProvidePushSender(cfg *config.Config, logger *zap.Logger) ports.PushSender {
	return push.NewClient(cfg.PushGatewayURL, cfg.PushServerKey, logger)
}

// ProvideNotificationService creates the scheduling broker service
func ProvideNotificationService(
	scheduler ports.NotificationScheduler,
	sender ports.PushSender,
	records ports.TakenRecordRepository,
	cfg *config.Config,
	home *time.Location,
	logger *zap.Logger,
) *services.NotificationService {
	return services.NewNotificationService(scheduler, sender, records, cfg.RulePrefix, home, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	records ports.TakenRecordRepository,
	notifications *services.NotificationService,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(records, notifications, cfg.EnableCORS, logger)
}
