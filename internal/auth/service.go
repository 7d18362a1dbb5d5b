package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the authenticated caller extracted from a bearer token
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// CanActOn reports whether the caller may run avatar or profile use cases
// for the target user. Callers act on their own record; admins act on any.
func (i Identity) CanActOn(targetUserID int64) bool {
	return i.IsAdmin || i.UserID == targetUserID
}

// Service issues and validates HMAC-signed JWT bearer tokens
type Service struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new token service
func NewService(jwtSecret []byte) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

// IssueToken signs a token for the given user
func (s *Service) IssueToken(userID int64, isAdmin bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken parses a token and returns the caller identity
func (s *Service) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// JSON numbers decode as float64
	rawUserID, ok := claims["user_id"].(float64)
	if !ok || rawUserID <= 0 {
		return nil, ErrInvalidToken
	}

	isAdmin, _ := claims["is_admin"].(bool)

	return &Identity{
		UserID:  int64(rawUserID),
		IsAdmin: isAdmin,
	}, nil
}
