package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"metacalc/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles reviewer authentication. It consolidates what used to
// be several competing auth paths behind a single JWT-based one.
type AuthService struct {
	username  string
	password  string
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(username, password, jwtSecret string) *AuthService {
	return &AuthService{
		username:  username,
		password:  password,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login validates credentials and returns a signed token.
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username || password != s.password {
		return nil, ErrInvalidCredentials
	}

	reviewerID := "reviewer_" + uuid.New().String()[:8]

	claims := &model.ReviewerClaims{
		ReviewerID: reviewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:      tokenString,
		ReviewerID: reviewerID,
	}, nil
}

// ValidateToken validates a reviewer JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.ReviewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ReviewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ReviewerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
