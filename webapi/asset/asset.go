// Package asset exposes the asset directory and the wallet over HTTP.
package asset

import (
	"github.com/amirasaad/tokenswap/pkg/app"
	"github.com/amirasaad/tokenswap/pkg/domain"
	"github.com/amirasaad/tokenswap/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the asset and catalog endpoints.
func Routes(fiberApp *fiber.App, a *app.App) {
	assets := fiberApp.Group("/api/assets")
	assets.Get("/", ListAssets(a))
	assets.Get("/targets", ListTargets(a))
	assets.Get("/:symbol", GetAsset(a))

	fiberApp.Get("/api/wallet", ListWallet(a))
	fiberApp.Post("/api/catalog/reload", ReloadCatalog(a))
}

// ListAssets returns every asset in the directory.
func ListAssets(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Assets fetched successfully", a.Catalog.Assets())
	}
}

// ListTargets returns the assets selectable as target. The current source is
// excluded unless the exclude query names another symbol.
func ListTargets(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		exclude := c.Query("exclude")
		if exclude == "" {
			if src := a.Engine.Snapshot().Source; src != nil {
				exclude = src.Symbol
			}
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Targets fetched successfully", a.Catalog.Targets(exclude))
	}
}

// GetAsset returns one asset by symbol.
func GetAsset(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		symbol := c.Params("symbol")
		asset, ok := a.Catalog.Lookup(symbol)
		if !ok {
			return common.ProblemDetailsJSON(c, "Asset not found",
				domain.NewError(domain.KindAssetNotFound, "asset not found: "+symbol, nil))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Asset fetched successfully", asset)
	}
}

// ListWallet returns holdings ordered by chain priority.
func ListWallet(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Wallet fetched successfully", a.WalletRows())
	}
}

// ReloadCatalog refetches prices and returns the refreshed session.
func ReloadCatalog(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.ReloadCatalog(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reload catalog", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Catalog reloaded", a.Engine.Snapshot())
	}
}
