package web

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const flashKey = "flashes"

type Flash struct {
	Category string
	Message  string
}

// addFlash queues a one-shot message for the next rendered page. Flashes are
// stored in the session as "category|message" strings so the postgres-backed
// store can gob-encode them without type registration.
func addFlash(c *fiber.Ctx, store *session.Store, category, message string) {
	sess, err := store.Get(c)
	if err != nil {
		slog.Error("Failed to get session for flash", "error", err)
		return
	}

	flashes, _ := sess.Get(flashKey).([]string)
	flashes = append(flashes, category+"|"+message)
	sess.Set(flashKey, flashes)
	if err := sess.Save(); err != nil {
		slog.Error("Failed to save session for flash", "error", err)
	}
}

// consumeFlashes returns and clears the queued messages.
func consumeFlashes(c *fiber.Ctx, store *session.Store) []Flash {
	sess, err := store.Get(c)
	if err != nil {
		slog.Error("Failed to get session for flash", "error", err)
		return nil
	}

	raw, _ := sess.Get(flashKey).([]string)
	if len(raw) == 0 {
		return nil
	}

	sess.Delete(flashKey)
	if err := sess.Save(); err != nil {
		slog.Error("Failed to save session for flash", "error", err)
	}

	flashes := make([]Flash, 0, len(raw))
	for _, entry := range raw {
		category, message, ok := strings.Cut(entry, "|")
		if !ok {
			continue
		}
		flashes = append(flashes, Flash{Category: category, Message: message})
	}
	return flashes
}
