package http

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"salesbi/internal/history"
)

// HistoryIndexAction lists recently asked questions, newest first.
func HistoryIndexAction(ctx *cartridge.Context) error {
	limit := history.DefaultLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a number"})
		}
		limit = n
	}

	logs, err := history.Recent(ctx.DB(), limit)
	if err != nil {
		ctx.Logger.Error("Failed to list history", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load history"})
	}

	return ctx.JSON(fiber.Map{"history": logs})
}
