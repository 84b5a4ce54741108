package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/domain"
)

// Claims is the payload embedded in every issued bearer token. SerialNumber
// carries the user's security stamp at issuance time; rotating the stamp
// invalidates every outstanding token.
type Claims struct {
	jwt.RegisteredClaims
	GivenName    string   `json:"given_name,omitempty"`
	FamilyName   string   `json:"family_name,omitempty"`
	UserName     string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// TokenService mints and verifies symmetric-key-signed bearer tokens.
type TokenService struct {
	securityKey []byte
	issuer      string
	audience    string
	expiration  time.Duration
}

// NewTokenService creates a TokenService with the given signing key, issuer,
// audience, and token lifetime.
func NewTokenService(securityKey []byte, issuer, audience string, expiration time.Duration) (*TokenService, error) {
	if len(securityKey) < 32 {
		return nil, errors.New("jwt security key must be at least 32 bytes")
	}
	if expiration <= 0 {
		return nil, errors.New("jwt expiration must be greater than 0")
	}
	return &TokenService{
		securityKey: securityKey,
		issuer:      issuer,
		audience:    audience,
		expiration:  expiration,
	}, nil
}

// Generate mints an HS256 token for the user with the given role memberships.
// It returns the signed token and its expiry.
func (s *TokenService) Generate(user *domain.User, roles []string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		GivenName:    user.FirstName,
		FamilyName:   user.LastName,
		UserName:     user.UserName,
		Email:        user.Email,
		SerialNumber: user.SecurityStamp,
		Roles:        roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.securityKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature, issuer, audience, and lifetime of a token and
// returns its claims.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return s.securityKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewContext builds the authenticated request context from verified claims.
func NewContext(claims *Claims) (*Context, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return &Context{
		UserID:        userID,
		UserName:      claims.UserName,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		Email:         claims.Email,
		SecurityStamp: claims.SerialNumber,
		Roles:         claims.Roles,
	}, nil
}
