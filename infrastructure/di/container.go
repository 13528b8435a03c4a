//go:build !wireinject
// +build !wireinject

package di

import (
	"context"

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

// InitializeContainer creates a fully wired container. Hand-rolled
// equivalent of the wire-generated initializer; keep the provider
// order in sync with SuperSet in wire.go.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := ProvideDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	limiter, err := ProvideVerifyLimiter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator, err := ProvideJWTValidator(cfg)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Database:      db,
		Enroller:      ProvideEnrollmentService(db, cfg, logger),
		Subscriptions: ProvideSubscriptionService(db, cfg, logger),
		VerifyLimiter: limiter,
		JWTValidator:  validator,
	}, nil
}
