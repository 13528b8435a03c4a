//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"learnhub-backend/application/services"
	"learnhub-backend/infrastructure/config"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/pkg/auth"
	"learnhub-backend/pkg/verify"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Database      *persistence.Database
	Enroller      *services.EnrollmentService
	Subscriptions *services.SubscriptionService
	VerifyLimiter *verify.Limiter
	JWTValidator  *auth.JWTValidator
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideEnrollmentService,
	ProvideSubscriptionService,
	ProvideVerifyLimiter,
	ProvideJWTValidator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
