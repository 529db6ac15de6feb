package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"meetflow/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claim")
)

// Purpose scopes what a capability token may be exchanged for.
type Purpose string

const (
	PurposeVerify     Purpose = "verify"
	PurposeCancel     Purpose = "cancel"
	PurposeReschedule Purpose = "reschedule"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeVerify, PurposeCancel, PurposeReschedule:
		return true
	default:
		return false
	}
}

// Capability is the payload bound into a booking token.
type Capability struct {
	Purpose   Purpose
	BookingID string
	TenantID  string
	JTI       string
	ExpiresAt time.Time
}

// Claims represents the JWT claims structure
type Claims struct {
	TenantID  string  `json:"tenant_id"`
	BookingID string  `json:"booking_id"`
	Purpose   Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// JWT mints and verifies booking capability tokens.
type JWT interface {
	Mint(capability Capability) (string, error)
	Verify(token string) (Capability, error)
}

// Service handles JWT operations
type Service struct {
	secret   []byte
	issuer   string
	audience string
}

// New creates a new JWT service
func New(cfg *config.Config) JWT {
	return &Service{
		secret:   []byte(cfg.Token.Secret),
		issuer:   cfg.TokenIssuer(),
		audience: cfg.TokenAudience(),
	}
}

// Mint signs a capability. Tokens carry no iat so re-minting with the same
// inputs yields the same token.
func (s *Service) Mint(capability Capability) (string, error) {
	if !capability.Purpose.Valid() {
		return "", fmt.Errorf("unknown token purpose: %s", capability.Purpose)
	}

	if capability.BookingID == "" || capability.TenantID == "" || capability.JTI == "" {
		return "", ErrInvalidClaim
	}

	claims := Claims{
		TenantID:  capability.TenantID,
		BookingID: capability.BookingID,
		Purpose:   capability.Purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(capability.ExpiresAt),
			ID:        capability.JTI,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify validates signature, issuer, audience and expiry.
func (s *Service) Verify(tokenString string) (Capability, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Capability{}, ErrExpiredToken
		}
		return Capability{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Capability{}, ErrInvalidToken
	}

	if !claims.Purpose.Valid() || claims.BookingID == "" || claims.TenantID == "" || claims.ID == "" {
		return Capability{}, ErrInvalidClaim
	}

	return Capability{
		Purpose:   claims.Purpose,
		BookingID: claims.BookingID,
		TenantID:  claims.TenantID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
