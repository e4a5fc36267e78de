// Package web exposes the economy engine over HTTP. Identity comes from the
// X-User-ID header; a gateway in front of the engine is expected to have
// authenticated it.
package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/duelmarket/duelmarket/engine/catalog"
	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
	"github.com/duelmarket/duelmarket/engine/economy"
	"github.com/duelmarket/duelmarket/engine/economy/auction"
	"github.com/duelmarket/duelmarket/engine/economy/dust"
	"github.com/duelmarket/duelmarket/engine/economy/market"
	"github.com/duelmarket/duelmarket/engine/economy/packs"
)

const userIDHeader = "X-User-ID"

type App struct {
	DB        *database.DB
	Users     repositories.UserRepository
	UserCards repositories.UserCardRepository
	PackRepo  repositories.PackRepository
	Catalog   *catalog.Service
	Packs     *packs.Manager
	Dust      *dust.Manager
	Market    *market.Manager
	Auctions  *auction.Manager
}

func New(app *App) *fiber.App {
	f := fiber.New(fiber.Config{
		AppName:      "duelmarket",
		ErrorHandler: errorHandler,
	})

	f.Use(recover.New())
	f.Use(cors.New())
	f.Use(compress.New())

	f.Get("/healthz", app.handleHealthz)

	api := f.Group("/api", requireUser)
	api.Get("/balance", app.handleBalance)
	api.Get("/inventory", app.handleInventory)
	api.Get("/inventory/:id", app.handleInventoryCard)
	api.Get("/cards/search", app.handleCardSearch)
	api.Get("/cards/:id", app.handleCard)
	api.Get("/packs", app.handlePacks)
	api.Post("/packs/:id/open", app.handleOpenPack)
	api.Post("/dust", app.handleDust)
	api.Get("/listings", app.handleListings)
	api.Get("/listings/mine", app.handleMyListings)
	api.Get("/listings/:id", app.handleListing)
	api.Post("/listings", app.handleCreateListing)
	api.Post("/listings/:id/buy", app.handleBuyListing)
	api.Get("/auctions", app.handleAuctions)
	api.Get("/auctions/:id", app.handleAuction)
	api.Post("/auctions", app.handleCreateAuction)
	api.Post("/auctions/:id/bids", app.handlePlaceBid)
	api.Get("/bids", app.handleMyBids)

	admin := f.Group("/admin")
	admin.Get("/stats", app.handleStats)
	admin.Post("/packs", app.handleCreatePack)
	admin.Put("/packs/:id", app.handleUpdatePack)
	admin.Delete("/packs/:id", app.handleDeactivatePack)
	admin.Post("/grants", app.handleGrant)

	return f
}

func requireUser(c *fiber.Ctx) error {
	if c.Get(userIDHeader) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing " + userIDHeader + " header",
		})
	}
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	return c.Get(userIDHeader)
}

// errorHandler maps economy sentinels onto HTTP statuses so handlers can
// return domain errors directly.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, economy.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, economy.ErrInsufficientCredits):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, economy.ErrInsufficientInventory),
		errors.Is(err, economy.ErrInsufficientStock),
		errors.Is(err, economy.ErrAlreadySold),
		errors.Is(err, economy.ErrSelfTrade):
		status = fiber.StatusConflict
	case errors.Is(err, economy.ErrBidTooLow),
		errors.Is(err, economy.ErrInvalidPackDefinition):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		slog.Error("Request failed",
			slog.String("type", "http"),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
