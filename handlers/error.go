package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/ui"
)

// CustomErrorHandler renders application errors as an HTML page. Internal
// errors are logged and shown with a generic message.
func CustomErrorHandler(ctx *fiber.Ctx, err error) error {
	// Status code defaults to 500
	code := fiber.StatusInternalServerError
	message := "Something went wrong. Please try again."

	// Retrieve the custom status code if it's a *fiber.Error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		observability.LoggerFromContext(ctx.UserContext()).Error().
			Str("component", "http").
			Str("path", ctx.Path()).
			Err(err).
			Msg("unhandled error")
	}

	ctx.Status(code)
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ui.ErrorPage(code, message).Render(ctx)
}
