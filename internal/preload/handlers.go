package preload

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func RegisterRoutes(r fiber.Router, orch *Orchestrator, memory *MemoryLayer, remote *RedisLayer) {
	r.Post("/preload", func(c *fiber.Ctx) error {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids required")
		}

		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid object id: "+raw)
			}
			ids = append(ids, id)
		}

		metrics := orch.Preload(c.Context(), ids)
		return c.JSON(metrics)
	})

	r.Get("/stats", func(c *fiber.Ctx) error {
		stats := fiber.Map{}
		if memory != nil {
			objects, bytes := memory.Stats()
			stats["memory"] = fiber.Map{"objects": objects, "bytes": bytes}
		}
		if remote != nil {
			objects, bytes, err := remote.Stats(c.Context())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			stats["redis"] = fiber.Map{"objects": objects, "bytes": bytes}
		}
		return c.JSON(stats)
	})

	r.Delete("/", func(c *fiber.Ctx) error {
		if memory != nil {
			memory.Clear()
		}
		if remote != nil {
			if err := remote.Clear(c.Context()); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
