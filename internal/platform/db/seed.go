package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cmcs/internal/domain/auth"
	"cmcs/internal/platform/config"
)

// Seed provisions the bootstrap HR account so a fresh deployment has a way
// to create lecturers and reviewers. Existing accounts are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.TrimSpace(strings.ToLower(cfg.SeedHREmail))
	if email == "" || cfg.SeedHRPassword == "" {
		return nil
	}

	var existing string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedHRPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, role, hourly_rate)
    VALUES ($1, $2, $3, $4, $5, 0)
  `, email, hash, "HR", "Admin", auth.RoleHR)
	return err
}
