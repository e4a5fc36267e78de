package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/duelmarket/duelmarket/engine/database/models"
)

const searchLimit = 25

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (a *App) handleHealthz(c *fiber.Ctx) error {
	if err := a.DB.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (a *App) handleBalance(c *fiber.Ctx) error {
	user, err := a.Users.GetOrCreate(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user_id": user.UserID,
		"balance": user.Balance,
	})
}

func (a *App) handleInventory(c *fiber.Ctx) error {
	rows, err := a.UserCards.GetAllByUserID(c.Context(), userID(c))
	if err != nil {
		return err
	}

	type entry struct {
		CardID int64         `json:"card_id"`
		Name   string        `json:"name"`
		Rarity models.Rarity `json:"rarity"`
		Amount int64         `json:"amount"`
	}
	out := make([]entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entry{
			CardID: row.CardID,
			Name:   a.Catalog.DisplayName(c.Context(), row.CardID),
			Rarity: row.Rarity,
			Amount: row.Amount,
		})
	}
	return c.JSON(out)
}

// handleInventoryCard breaks one card down per rarity for the calling user.
// An optional rarity query narrows it to a single ledger row.
func (a *App) handleInventoryCard(c *fiber.Ctx) error {
	cardID, err := parseID(c)
	if err != nil {
		return err
	}

	if raw := c.Query("rarity"); raw != "" {
		rarity, err := models.ParseRarity(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		row, err := a.UserCards.GetByUserCardRarity(c.Context(), userID(c), cardID, rarity)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"card_id": cardID,
			"name":    a.Catalog.DisplayName(c.Context(), cardID),
			"rarity":  row.Rarity,
			"amount":  row.Amount,
		})
	}

	rows, err := a.UserCards.GetByUserAndCard(c.Context(), userID(c), cardID)
	if err != nil {
		return err
	}
	total, err := a.UserCards.TotalCopies(c.Context(), userID(c), cardID)
	if err != nil {
		return err
	}

	copies := make(map[models.Rarity]int64, len(rows))
	for _, row := range rows {
		copies[row.Rarity] = row.Amount
	}
	return c.JSON(fiber.Map{
		"card_id": cardID,
		"name":    a.Catalog.DisplayName(c.Context(), cardID),
		"copies":  copies,
		"total":   total,
	})
}

func (a *App) handleCard(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	card, err := a.Catalog.Lookup(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(card)
}

func (a *App) handleCardSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter q")
	}
	cards, err := a.Catalog.Search(c.Context(), query, searchLimit)
	if err != nil {
		return err
	}
	return c.JSON(cards)
}

func (a *App) handlePacks(c *fiber.Ctx) error {
	active, err := a.PackRepo.GetActive(c.Context())
	if err != nil {
		return err
	}

	type entry struct {
		ID      int64             `json:"id"`
		Name    string            `json:"name"`
		Price   int64             `json:"price"`
		Slots   []models.PackSlot `json:"slots"`
		AvgDust float64           `json:"average_dust_value"`
	}
	out := make([]entry, 0, len(active))
	for _, pack := range active {
		out = append(out, entry{
			ID:      pack.ID,
			Name:    pack.Name,
			Price:   pack.Price,
			Slots:   pack.Slots,
			AvgDust: pack.AverageDustValue(),
		})
	}
	return c.JSON(out)
}

func (a *App) handleOpenPack(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	drawn, err := a.Packs.Open(c.Context(), userID(c), id, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"pack_id":  id,
		"quantity": req.Quantity,
		"cards":    drawn,
	})
}

func (a *App) handleDust(c *fiber.Ctx) error {
	var req struct {
		CardID   int64  `json:"card_id"`
		Rarity   string `json:"rarity"`
		Quantity int64  `json:"quantity"`
		All      bool   `json:"all"`
		Keep     bool   `json:"keep"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var credits int64
	var err error
	switch {
	case req.Keep:
		credits, err = a.Dust.DustAllKeep(c.Context(), userID(c), req.CardID)
	case req.All:
		credits, err = a.Dust.DustAll(c.Context(), userID(c), req.CardID, models.Rarity(req.Rarity))
	default:
		credits, err = a.Dust.Dust(c.Context(), userID(c), req.CardID, models.Rarity(req.Rarity), req.Quantity)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"credits": credits})
}

func (a *App) handleListings(c *fiber.Ctx) error {
	listings, err := a.Market.GetActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

func (a *App) handleMyListings(c *fiber.Ctx) error {
	listings, err := a.Market.BySeller(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(listings)
}

func (a *App) handleListing(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	listing, err := a.Market.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

func (a *App) handleCreateListing(c *fiber.Ctx) error {
	var req struct {
		CardID   int64  `json:"card_id"`
		Rarity   string `json:"rarity"`
		Quantity int64  `json:"quantity"`
		Price    int64  `json:"price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	listing, err := a.Market.CreateListing(c.Context(), userID(c), req.CardID, models.Rarity(req.Rarity), req.Quantity, req.Price)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (a *App) handleBuyListing(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	listing, err := a.Market.Buy(c.Context(), userID(c), id, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

func (a *App) handleAuctions(c *fiber.Ctx) error {
	auctions, err := a.Auctions.GetActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(auctions)
}

// handleAuction resolves an auction by numeric id or by its short display
// handle and includes the outstanding bid trail.
func (a *App) handleAuction(c *fiber.Ctx) error {
	var auc *models.Auction
	var err error
	if id, parseErr := strconv.ParseInt(c.Params("id"), 10, 64); parseErr == nil {
		auc, err = a.Auctions.GetByID(c.Context(), id)
	} else {
		auc, err = a.Auctions.GetByAuctionID(c.Context(), c.Params("id"))
	}
	if err != nil {
		return err
	}

	bids, err := a.Auctions.Bids(c.Context(), auc.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"auction": auc,
		"bids":    bids,
	})
}

func (a *App) handleMyBids(c *fiber.Ctx) error {
	bids, err := a.Auctions.UserBids(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(bids)
}

func (a *App) handleCreateAuction(c *fiber.Ctx) error {
	var req struct {
		CardID     int64  `json:"card_id"`
		Rarity     string `json:"rarity"`
		Quantity   int64  `json:"quantity"`
		StartPrice int64  `json:"start_price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	auc, err := a.Auctions.Create(c.Context(), userID(c), req.CardID, models.Rarity(req.Rarity), req.Quantity, req.StartPrice)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(auc)
}

func (a *App) handlePlaceBid(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	auc, err := a.Auctions.PlaceBid(c.Context(), userID(c), id, req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(auc)
}

// handleStats reports economy-wide aggregates for the admin collaborator.
func (a *App) handleStats(c *fiber.Ctx) error {
	cards, err := a.Catalog.Count(c.Context())
	if err != nil {
		return err
	}

	rows, err := a.DB.QueryWithLog(c.Context(), `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM users),
			(SELECT COUNT(*) FROM listings WHERE status = 'active'),
			(SELECT COUNT(*) FROM auctions WHERE status = 'active')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var totalCredits, activeListings, activeAuctions int64
	if rows.Next() {
		if err := rows.Scan(&totalCredits, &activeListings, &activeAuctions); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"cards":           cards,
		"total_credits":   totalCredits,
		"active_listings": activeListings,
		"active_auctions": activeAuctions,
	})
}

func (a *App) handleCreatePack(c *fiber.Ctx) error {
	pack := new(models.Pack)
	if err := c.BodyParser(pack); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	pack.Active = true
	if err := a.PackRepo.Create(c.Context(), pack); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(pack)
}

func (a *App) handleUpdatePack(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pack := new(models.Pack)
	if err := c.BodyParser(pack); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	pack.ID = id
	if err := a.PackRepo.Update(c.Context(), pack); err != nil {
		return err
	}
	return c.JSON(pack)
}

func (a *App) handleDeactivatePack(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := a.PackRepo.Deactivate(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *App) handleGrant(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id"`
		Amount int64  `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Amount < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "user_id and a positive amount are required")
	}
	if err := a.Users.Grant(c.Context(), req.UserID, req.Amount); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user_id": req.UserID, "granted": req.Amount})
}
