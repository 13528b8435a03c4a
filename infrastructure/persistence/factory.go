// Package persistence selects and constructs the concrete database
// backend from configuration. Backends register as named
// constructors; an unknown or unimplemented backend fails fast at
// construction time, never at first use.
package persistence

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/infrastructure/config"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/infrastructure/persistence/dynamodb"
	"learnhub-backend/infrastructure/persistence/memory"
	"learnhub-backend/infrastructure/persistence/repository"
	apperrors "learnhub-backend/pkg/errors"
)

// StoreConstructor builds a document store for one backend type.
type StoreConstructor func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (abstractions.Store, error)

// registry maps backend identifiers to their constructors. The
// mongodb entry is registered but deliberately unimplemented: it must
// fail at construction with UNSUPPORTED_BACKEND rather than partially
// building a broken service.
var registry = map[string]StoreConstructor{
	config.BackendDynamoDB: newDynamoDBStore,
	config.BackendMemory:   newMemoryStore,
	config.BackendMongoDB:  newMongoDBStore,
}

// Register adds or replaces a backend constructor. Exposed for tests
// and deployment-specific backends.
func Register(backend string, ctor StoreConstructor) {
	registry[backend] = ctor
}

// NewStore constructs the document store for the configured backend.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (abstractions.Store, error) {
	ctor, ok := registry[cfg.DatabaseBackend]
	if !ok {
		return nil, apperrors.NewUnsupportedBackendError(cfg.DatabaseBackend)
	}
	return ctor(ctx, cfg, logger)
}

func newDynamoDBStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (abstractions.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, apperrors.NewUnavailableError(config.BackendDynamoDB, err)
	}
	client := awsdynamodb.NewFromConfig(awsCfg)
	return dynamodb.NewStore(client, cfg.TableName, cfg.IndexName, logger), nil
}

func newMemoryStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (abstractions.Store, error) {
	return memory.NewStore(), nil
}

func newMongoDBStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (abstractions.Store, error) {
	return nil, apperrors.NewUnsupportedBackendError(config.BackendMongoDB)
}

// Database bundles the store and the entity repositories built over
// it. All repositories share the one store connection.
type Database struct {
	Store       abstractions.Store
	Users       ports.UserRepository
	Workshops   ports.WorkshopRepository
	Enrollments ports.EnrollmentRepository
	Payments    ports.PaymentRepository
	Modules     ports.ModuleRepository
}

// NewDatabase constructs the configured backend and its repositories.
func NewDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	store, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Database backend initialized",
		zap.String("backend", cfg.DatabaseBackend),
	)

	return NewDatabaseWithStore(store, logger), nil
}

// NewDatabaseWithStore builds the repository set over an existing
// store. Tests use it with the in-memory backend.
func NewDatabaseWithStore(store abstractions.Store, logger *zap.Logger) *Database {
	return &Database{
		Store:       store,
		Users:       repository.NewUserRepository(store, logger),
		Workshops:   repository.NewWorkshopRepository(store, logger),
		Enrollments: repository.NewEnrollmentRepository(store, logger),
		Payments:    repository.NewPaymentRepository(store, logger),
		Modules:     repository.NewModuleRepository(store, logger),
	}
}
