package local

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/user"
)

func Auth(c *fiber.Ctx) user.Auth {
	auth, _ := c.Locals("auth").(user.Auth)
	return auth
}

func SetAuth(c *fiber.Ctx, auth user.Auth) {
	c.Locals("auth", auth)
}

func Subscription(c *fiber.Ctx) user.Subscription {
	sub, _ := c.Locals("subscription").(user.Subscription)
	return sub
}

func SetSubscription(c *fiber.Ctx, sub user.Subscription) {
	c.Locals("subscription", sub)
}

func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sessionID").(string)
	return sid
}

func SetSessionID(c *fiber.Ctx, sid string) {
	c.Locals("sessionID", sid)
}
