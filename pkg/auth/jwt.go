package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jordanlanch/leadcrm/pkg/policy"
)

// Claims represents JWT claims. Role and organization ride in the token so
// the middleware can build a policy.Principal without a database round trip.
type Claims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the policy representation used across
// the services.
func (c *Claims) Principal() policy.Principal {
	return policy.Principal{
		ID:             c.UserID,
		Role:           policy.Role(c.Role),
		OrganizationID: c.OrganizationID,
	}
}

// GenerateJWT generates a signed token for the user.
func GenerateJWT(userID, email string, role policy.Role, organizationID, secret string, expirationHours int) (string, error) {
	claims := &Claims{
		UserID:         userID,
		Email:          email,
		Role:           string(role),
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(expirationHours))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates a token and returns its claims.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ValidateJWTWithBlacklist validates a token and rejects it when revoked.
func ValidateJWTWithBlacklist(ctx context.Context, tokenString, secret string, blacklist *TokenBlacklist) (*Claims, error) {
	claims, err := ValidateJWT(tokenString, secret)
	if err != nil {
		return nil, err
	}

	if blacklist != nil {
		revoked, err := blacklist.IsBlacklisted(ctx, tokenString)
		if err != nil {
			return nil, fmt.Errorf("failed to check blacklist: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("token has been revoked")
		}
	}
	return claims, nil
}
