package users

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"cmcs/internal/domain/auth"
	"cmcs/internal/platform/querier"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, first_name, last_name, role, hourly_rate, created_at
    FROM users
    ORDER BY email
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.HourlyRate, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, first_name, last_name, role, hourly_rate, created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.HourlyRate, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Store) Create(ctx context.Context, input CreateUserInput) (string, error) {
	if !auth.ValidRole(input.Role) {
		return "", ErrInvalidRole
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, role, hourly_rate)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, strings.TrimSpace(strings.ToLower(input.Email)), hash, input.FirstName, input.LastName, input.Role, input.HourlyRate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateRate changes the configured rate used for future submissions only.
// Totals on existing claims keep their snapshot.
func (s *Store) UpdateRate(ctx context.Context, userID string, rate float64) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET hourly_rate = $1 WHERE id = $2", rate, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RateByUserID is the snapshot source for claim submission.
func (s *Store) RateByUserID(ctx context.Context, userID string) (float64, error) {
	var rate float64
	err := s.DB.QueryRow(ctx, "SELECT hourly_rate FROM users WHERE id = $1", userID).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (s *Store) EmailByUserID(ctx context.Context, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
