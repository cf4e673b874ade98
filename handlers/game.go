// handlers/game.go
package handlers

import (
	"strconv"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/middleware"
	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	games         *services.GameService
	sync          *services.SyncService
	batchMaxItems int
}

func NewGameHandler(games *services.GameService, sync *services.SyncService, batchMaxItems int) *GameHandler {
	return &GameHandler{games: games, sync: sync, batchMaxItems: batchMaxItems}
}

type listQuery struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=1,lte=200"`
}

type batchSyncRequest struct {
	AppIDs []int `json:"appids" validate:"required,min=1"`
}

func SetupGameRoutes(app *fiber.App, h *GameHandler, serviceToken string) {
	app.Get("/games", h.ListGames)
	app.Get("/games/slug/:slug", h.GetGameBySlug)
	app.Get("/games/:id", h.GetGame)

	secured := app.Group("/games", middleware.ServiceTokenMiddleware(serviceToken))
	secured.Post("/", h.CreateGame)
	secured.Patch("/:id", h.PatchGame)
	secured.Post("/sync-steam", h.SyncBatch)
	secured.Post("/sync-steam/:appid", h.SyncOne)
}

func (h *GameHandler) CreateGame(c *fiber.Ctx) error {
	var input services.CreateGameInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, apperrors.BadRequest("invalid JSON body", err))
	}
	if err := validateStruct(&input); err != nil {
		return respondError(c, err)
	}

	game, created, err := h.games.CreateGame(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(game)
	}
	return c.JSON(game)
}

func (h *GameHandler) ListGames(c *fiber.Ctx) error {
	q := listQuery{Skip: 0, Limit: 50}
	if err := c.QueryParser(&q); err != nil {
		return respondError(c, apperrors.BadRequest("skip and limit must be integers", err))
	}
	if err := validateStruct(&q); err != nil {
		return respondError(c, err)
	}

	games, err := h.games.ListGames(c.UserContext(), q.Skip, q.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(games)
}

func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	id, err := parseGameID(c)
	if err != nil {
		return respondError(c, err)
	}
	game, err := h.games.GetGame(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) GetGameBySlug(c *fiber.Ctx) error {
	game, err := h.games.GetGameBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) PatchGame(c *fiber.Ctx) error {
	id, err := parseGameID(c)
	if err != nil {
		return respondError(c, err)
	}
	var input services.PatchGameInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, apperrors.BadRequest("invalid JSON body", err))
	}
	if err := validateStruct(&input); err != nil {
		return respondError(c, err)
	}

	game, err := h.games.PatchGame(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

// SyncOne maps UPSTREAM_ERROR to 502 and NOT_FOUND to 404 through respondError.
func (h *GameHandler) SyncOne(c *fiber.Ctx) error {
	appID, err := strconv.Atoi(c.Params("appid"))
	if err != nil {
		return respondError(c, apperrors.BadRequest("appid must be an integer", err))
	}

	game, err := h.sync.SyncOne(c.UserContext(), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) SyncBatch(c *fiber.Ctx) error {
	var req batchSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.BadRequest("invalid JSON body", err))
	}
	if err := validateStruct(&req); err != nil {
		return respondError(c, err)
	}
	if len(req.AppIDs) > h.batchMaxItems {
		return respondError(c, apperrors.BadRequest(
			"too many appids in one batch (max "+strconv.Itoa(h.batchMaxItems)+")", nil))
	}

	results := h.sync.SyncMany(c.UserContext(), req.AppIDs)
	return c.JSON(fiber.Map{"results": results})
}

func parseGameID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("game id must be a positive integer", err)
	}
	return uint(id), nil
}
