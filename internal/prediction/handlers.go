package prediction

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

func RegisterRoutes(r fiber.Router, registry *Registry, selector *Selector) {
	// One-shot prediction: a single sample in, ranked object IDs out.
	r.Post("/", func(c *fiber.Ctx) error {
		var sample TrajectorySample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request format")
		}

		ids, err := selector.Select(c.Context(), sample)
		if err != nil {
			if errors.Is(err, ErrInvalidSample) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		raw := make([]string, 0, len(ids))
		for _, id := range ids {
			raw = append(raw, id.String())
		}
		return c.JSON(raw)
	})

	// Continuous prediction: JSON samples in, prediction/error notifications out.
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		session := registry.Register(uuid.NewString())

		done := make(chan struct{})
		go func() {
			for msg := range session.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			var sample TrajectorySample
			if err := json.Unmarshal(msg, &sample); err != nil {
				session.EmitError("invalid sample: " + err.Error())
				continue
			}
			session.HandleSample(sample)
		}

		registry.Unregister(session)
		<-done
	}))
}
