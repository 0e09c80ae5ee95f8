package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cookie"
	"github.com/deal-drive/site/jwt"
	"github.com/deal-drive/site/local"
	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/user"
)

// JWTMiddleware validates the identity provider's token and sets the user
// and subscription in the context. Requests without a valid token continue
// anonymously.
func (h *Handlers) JWTMiddleware(c *fiber.Ctx) error {
	local.SetAuth(c, user.Auth{})
	local.SetSubscription(c, user.Subscription{})

	tokenString := cookie.GetJWT(c)
	if tokenString == "" {
		return c.Next()
	}

	claims, err := jwt.ValidateToken([]byte(h.cfg.JWTSecret), tokenString)
	if err != nil {
		// Invalid token, clear cookie
		observability.LoggerFromContext(c.UserContext()).Debug().
			Str("component", "auth").Err(err).Msg("rejecting auth token")
		cookie.ClearJWT(c)
		return c.Next()
	}

	local.SetAuth(c, claims.Auth())
	local.SetSubscription(c, claims.Subscription())
	return c.Next()
}

// SessionMiddleware makes sure every browser carries a search session id.
func (h *Handlers) SessionMiddleware(c *fiber.Ctx) error {
	local.SetSessionID(c, cookie.SessionID(c))
	return c.Next()
}
