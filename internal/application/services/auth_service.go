package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/homewarden/homewarden/internal/core/ports"
)

// AuthConfig holds the token signing parameters.
type AuthConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// AuthService implements ports.AuthService: password verification plus
// signing and verifying the access tokens used as caller identity. No
// sessions, no refresh tokens.
type AuthService struct {
	members ports.MemberRepository
	cfg     AuthConfig
	logger  *logrus.Logger
}

type accessClaims struct {
	HouseholdID string `json:"hid"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates the service.
func NewAuthService(members ports.MemberRepository, cfg AuthConfig, logger *logrus.Logger) *AuthService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	return &AuthService{members: members, cfg: cfg, logger: logger}
}

// Login implements ports.AuthService.Login.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *ports.Identity, error) {
	m, err := s.members.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || m == nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now()
	claims := accessClaims{
		HouseholdID: m.HouseholdID.String(),
		Role:        string(m.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &ports.Identity{MemberID: m.ID, HouseholdID: m.HouseholdID, Role: string(m.Role)}, nil
}

// Verify implements ports.AuthService.Verify.
func (s *AuthService) Verify(ctx context.Context, token string) (*ports.Identity, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	memberID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject")
	}
	householdID, err := uuid.Parse(claims.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("invalid token household")
	}
	return &ports.Identity{MemberID: memberID, HouseholdID: householdID, Role: claims.Role}, nil
}
