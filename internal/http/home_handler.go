package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"salesbi/web"
)

// HomeIndexAction serves the question page.
func HomeIndexAction(ctx *cartridge.Context) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Send(web.IndexHTML())
}
