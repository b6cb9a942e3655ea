package domain

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/Vovarama1992/voxstudio/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidPassword = errors.New("invalid password")

type authService struct {
	pool     *pgxpool.Pool
	password string
	secret   string
}

// NewAuthService checks logins against studio_auth when a pool is given,
// otherwise against the configured password.
func NewAuthService(pool *pgxpool.Pool, password, secret string) ports.AuthService {
	return &authService{
		pool:     pool,
		password: password,
		secret:   secret,
	}
}

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	realPass := s.password

	if s.pool != nil {
		err := s.pool.QueryRow(ctx,
			`SELECT password FROM studio_auth LIMIT 1`,
		).Scan(&realPass)
		if err != nil {
			return "", err
		}
	}

	if realPass == "" || !hmac.Equal([]byte(password), []byte(realPass)) {
		return "", ErrInvalidPassword
	}

	return s.sign("allowed"), nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (bool, error) {
	valid := s.sign("allowed")
	return hmac.Equal([]byte(token), []byte(valid)), nil
}

func (s *authService) sign(msg string) string {
	h := hmac.New(sha256.New, []byte(s.secret))
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}
