package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cache"
)

const healthCheckTimeout = 2 * time.Second

// HandleHealth returns the health status of the application and its
// dependencies as JSON.
func (h *Handlers) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	health := fiber.Map{
		"status": "ok",
	}

	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			health["status"] = "unhealthy"
			health[check.Name] = "down"
			c.Status(fiber.StatusServiceUnavailable)
		} else {
			health[check.Name] = "up"
		}
	}

	stats := make([]cache.Stats, 0, len(h.caches))
	for _, cr := range h.caches {
		stats = append(stats, cr.CacheStats())
	}
	health["caches"] = stats

	return c.JSON(health)
}
