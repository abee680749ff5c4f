package httpx

import (
	"github.com/gofiber/fiber/v2"

	"freelanceflow/internal/httpx/kit"
)

// HealthHandler reports service liveness.
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func HealthHandler(c *fiber.Ctx) error {
	return kit.OK(c, fiber.Map{"status": "ok"})
}
