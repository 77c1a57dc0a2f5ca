package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"gravity/cmd/identity"
)

// CreateAdmin provisions an admin account. Used by the create-admin
// subcommand; the password arrives via flag or prompt, never logged.
func CreateAdmin(ctx context.Context, cfg Config, log Logger, name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return errors.New("create-admin: name, email and password are required")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ids, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		return err
	}

	res, err := ids.CreateUser(ctx, identity.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     identity.RoleAdmin,
		Now:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	log.Info("admin.created", "user_id", res.User.ID, "email", res.User.Email)
	return nil
}
