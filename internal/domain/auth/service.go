package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"cmcs/internal/platform/querier"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 12 * time.Hour

type Service struct {
	DB     querier.Querier
	Secret string
}

func NewService(db querier.Querier, secret string) *Service {
	return &Service{DB: db, Secret: secret}
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var userID, hash, role string
	err := s.DB.QueryRow(ctx, `
    SELECT id, password_hash, role
    FROM users
    WHERE email = $1
  `, email).Scan(&userID, &hash, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := CheckPassword(hash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: userID, Role: role}, tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, UserID: userID, Role: role}, nil
}
