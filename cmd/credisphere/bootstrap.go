package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/credisphere/credisphere/internal/app"
	"github.com/credisphere/credisphere/internal/auth"
	"github.com/credisphere/credisphere/internal/platform/httpx"
	"github.com/credisphere/credisphere/internal/rbac"
	"github.com/credisphere/credisphere/internal/users"
)

type accountFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

type accountCreator interface {
	CreateUser(ctx context.Context, req users.CreateRequest) (users.User, error)
}

// ensureAdmin creates the configured superadmin on first start. An existing
// account with that email is left untouched.
func ensureAdmin(ctx context.Context, finder accountFinder, creator accountCreator, cfg *app.Config, logger *slog.Logger) error {
	if cfg.BootstrapAdminEmail == "" {
		return nil
	}
	_, err := finder.FindByEmail(ctx, cfg.BootstrapAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, httpx.ErrNotFound) {
		return err
	}
	// No user exists yet to act as principal, so the system acts as one.
	ctx = rbac.ContextWithPrincipal(ctx, &rbac.Principal{Role: rbac.RoleSuperAdmin, Active: true})
	created, err := creator.CreateUser(ctx, users.CreateRequest{
		Email:    cfg.BootstrapAdminEmail,
		Name:     "Administrator",
		Password: cfg.BootstrapAdminPassword,
		Role:     string(rbac.RoleSuperAdmin),
	})
	if err != nil {
		return err
	}
	logger.Info("bootstrap admin created", slog.Int64("user_id", created.ID), slog.String("email", created.Email))
	return nil
}
