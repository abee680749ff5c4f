package kit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// RequestID extracts the request id set by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	rid := c.GetRespHeader("X-Request-ID")
	return lo.Ternary(rid != "", rid, c.Get("X-Request-ID"))
}

// OK sends a 200 response with the payload as-is. The project API is a
// plain wire: arrays and objects without an envelope.
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created sends a 201 response with the payload as-is.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Message sends a 200 response with a human-readable notice.
func Message(c *fiber.Ctx, msg string) error {
	return OK(c, fiber.Map{"message": msg})
}
