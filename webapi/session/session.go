// Package session exposes the conversion session over HTTP.
package session

import (
	"github.com/amirasaad/tokenswap/pkg/app"
	"github.com/amirasaad/tokenswap/pkg/conversion"
	"github.com/amirasaad/tokenswap/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the session endpoints.
func Routes(fiberApp *fiber.App, a *app.App) {
	group := fiberApp.Group("/api/session")
	group.Get("/", GetSession(a))
	group.Put("/amount", SetAmount(a))
	group.Put("/assets/:role", SelectAsset(a))
	group.Post("/swap", Swap(a))
	group.Post("/submit", Submit(a))
	group.Post("/reset", Reset(a))
	group.Get("/activity", ListActivity(a))
}

// GetSession returns the current snapshot.
func GetSession(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session fetched successfully", a.Engine.Snapshot())
	}
}

// SetAmount stores the source amount text. Rejected text is reported as a
// problem; the session keeps it along with the error.
func SetAmount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AmountRequest](c)
		if err != nil {
			return err
		}
		if err := a.Engine.SetSourceAmountText(c.UserContext(), input.Text); err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Amount updated", a.Engine.Snapshot())
	}
}

// SelectAsset puts an asset into the source or target slot.
func SelectAsset(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := conversion.ParseRole(c.Params("role"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid role", err, fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[SelectRequest](c)
		if err != nil {
			return err
		}
		if err := a.Engine.SelectAsset(c.UserContext(), input.Symbol, role); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to select asset", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Asset selected", a.Engine.Snapshot())
	}
}

// Swap exchanges source and target.
func Swap(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Engine.Swap(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to swap assets", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Assets swapped", a.Engine.Snapshot())
	}
}

// Submit sends the current conversion to the execution service and waits
// for the outcome.
func Submit(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Engine.Submit(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Conversion not submitted", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Conversion settled", a.Engine.Snapshot())
	}
}

// Reset clears the amount and the last outcome.
func Reset(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Engine.Reset(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reset session", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session reset", a.Engine.Snapshot())
	}
}

// ListActivity returns recent conversion outcomes, newest first.
func ListActivity(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Activity fetched successfully", a.Activity.Recent())
	}
}
