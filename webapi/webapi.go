// Package webapi serves the conversion session over HTTP:
// - asset: directory, wallet and catalog reload endpoints
// - session: snapshot and intent endpoints
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/tokenswap/pkg/app"
	"github.com/amirasaad/tokenswap/webapi/asset"
	"github.com/amirasaad/tokenswap/webapi/common"
	"github.com/amirasaad/tokenswap/webapi/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
)

// SetupApp builds the fiber application for a.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "tokenswap",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, utils.StatusMessage(common.ErrorToStatusCode(err)), err)
		},
	})

	limit, window := 100, time.Minute
	if rl := a.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		limit = rl.MaxRequests
		if rl.Window > 0 {
			window = rl.Window
		}
	}
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				first, _, _ := strings.Cut(forwardedFor, ",")
				return strings.TrimSpace(first)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		snap := a.Engine.Snapshot()
		status := "ok"
		if snap.CatalogError != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":  status,
			"phase":   snap.Phase,
			"catalog": a.Catalog.Loaded(),
		})
	})

	asset.Routes(fiberApp, a)
	session.Routes(fiberApp, a)
	return fiberApp
}
