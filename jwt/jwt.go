package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deal-drive/site/user"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity provider's session claims.
type Claims struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	OrgID      string `json:"org_id,omitempty"`
	Plan       string `json:"plan,omitempty"`
	PlanStatus string `json:"plan_status,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for a user. The site only verifies tokens;
// this exists for local development and tests.
func GenerateToken(secret []byte, a user.Auth, sub user.Subscription, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:       a.Name,
		Email:      a.Email,
		OrgID:      a.OrgID,
		Plan:       sub.Plan,
		PlanStatus: string(sub.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Auth extracts the identity from validated claims
func (c *Claims) Auth() user.Auth {
	return user.Auth{ID: c.Subject, Name: c.Name, Email: c.Email, OrgID: c.OrgID}
}

// Subscription extracts the plan from validated claims
func (c *Claims) Subscription() user.Subscription {
	return user.Subscription{Plan: c.Plan, Status: user.SubscriptionStatus(c.PlanStatus)}
}
