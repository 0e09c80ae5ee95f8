package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/local"
	"github.com/deal-drive/site/ui"
)

// HandleHistory re-renders the recent searches of the signed-in user.
func (h *Handlers) HandleHistory(c *fiber.Ctx) error {
	auth := local.Auth(c)
	if h.history == nil || !local.Subscription(c).CanSaveHistory(auth) {
		return render(c, ui.RecentSearches(nil))
	}

	recent, err := h.history.Recent(c.UserContext(), auth.ID, recentSearchLimit)
	if err != nil {
		return err
	}
	return render(c, ui.RecentSearches(recent))
}

// HandleHistoryDelete removes one recent search. The swapped-out list item
// is replaced with nothing.
func (h *Handlers) HandleHistoryDelete(c *fiber.Ctx) error {
	auth := local.Auth(c)
	if !auth.SignedIn() {
		return fiber.NewError(fiber.StatusUnauthorized, "Sign in to manage your searches.")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid search id.")
	}
	if h.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "Search history is not available.")
	}

	if err := h.history.Delete(c.UserContext(), id, auth.ID); err != nil {
		return err
	}
	return c.SendString("")
}
