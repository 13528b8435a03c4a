package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"learnhub-backend/application/services"
	"learnhub-backend/infrastructure/config"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/verify"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
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

// ProvideDatabase creates the store and repositories for the
// configured backend
func ProvideDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*persistence.Database, error) {
	return persistence.NewDatabase(ctx, cfg, logger)
}

// ProvideEnrollmentService creates the enrollment orchestrator
func ProvideEnrollmentService(db *persistence.Database, cfg *config.Config, logger *zap.Logger) *services.EnrollmentService {
	return services.NewEnrollmentService(
		db.Store,
		db.Users,
		db.Workshops,
		db.Enrollments,
		db.Payments,
		cfg.DefaultCurrency,
		logger,
	)
}

// ProvideSubscriptionService creates the polling subscription service
func ProvideSubscriptionService(db *persistence.Database, cfg *config.Config, logger *zap.Logger) *services.SubscriptionService {
	return services.NewSubscriptionService(
		db.Enrollments,
		db.Workshops,
		cfg.SubscriptionPollInterval,
		logger,
	)
}

// ProvideVerifyLimiter creates the phone-verification attempt limiter.
// The DynamoDB backend shares the main table so the cap holds across
// instances; every other backend keeps the counter in memory.
func ProvideVerifyLimiter(ctx context.Context, cfg *config.Config) (*verify.Limiter, error) {
	var store verify.CounterStore
	if cfg.DatabaseBackend == config.BackendDynamoDB {
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store = verify.NewDynamoDBCounterStore(awsdynamodb.NewFromConfig(awsCfg), cfg.TableName)
	} else {
		store = verify.NewMemoryCounterStore()
	}
	return verify.NewLimiter(store, cfg.VerifyMaxAttempts, cfg.VerifyWindow), nil
}

// ProvideJWTValidator creates the API token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}
