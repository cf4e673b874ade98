// services/game_service.go
package services

import (
	"context"
	"log"
	"strings"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/models"

	"github.com/gosimple/slug"
)

// CreateGameInput is a hand-entered game. SteamAppID is optional.
type CreateGameInput struct {
	Name       string   `json:"name" validate:"required,max=255"`
	SteamAppID *int     `json:"steam_appid" validate:"omitempty,gt=0"`
	Genre      *string  `json:"genre" validate:"omitempty,max=512"`
	Developer  *string  `json:"developer" validate:"omitempty,max=512"`
	Publisher  *string  `json:"publisher" validate:"omitempty,max=512"`
	Platform   *string  `json:"platform" validate:"omitempty,max=64"`
	PriceUSD   *float64 `json:"price_usd" validate:"omitempty,gte=0"`
	Rating     *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// PatchGameInput carries direct field edits; nil fields are left unchanged.
type PatchGameInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Genre       *string  `json:"genre" validate:"omitempty,max=512"`
	Developer   *string  `json:"developer" validate:"omitempty,max=512"`
	Publisher   *string  `json:"publisher" validate:"omitempty,max=512"`
	Categories  *string  `json:"categories" validate:"omitempty,max=2048"`
	Platform    *string  `json:"platform" validate:"omitempty,max=64"`
	HoursPlayed *int     `json:"hours_played" validate:"omitempty,gte=0"`
	PriceUSD    *float64 `json:"price_usd" validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	Completed   *bool    `json:"completed"`
}

type GameService struct {
	store GameStore
}

func NewGameService(store GameStore) *GameService {
	return &GameService{store: store}
}

// CreateGame inserts a hand-entered game. When SteamAppID already belongs to a game, that game
// is updated with the supplied fields instead. created reports which path was taken.
func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (game *models.Game, created bool, err error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, false, apperrors.BadRequest("name is required", nil)
	}

	if input.SteamAppID != nil {
		existing, err := s.store.FindByExternalID(ctx, *input.SteamAppID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			applyCreateInput(existing, name, input)
			if err := s.store.Update(ctx, existing); err != nil {
				return nil, false, err
			}
			log.Printf("[CATALOG] Updated existing game id=%d for appid=%d", existing.ID, *input.SteamAppID)
			game, err := s.store.FindByID(ctx, existing.ID)
			return game, false, err
		}
	}

	game = &models.Game{Platform: models.DefaultPlatform}
	if input.SteamAppID != nil {
		game.ExternalID = intPtr(*input.SteamAppID)
	}
	applyCreateInput(game, name, input)

	if err := s.store.Insert(ctx, game); err != nil {
		return nil, false, err
	}
	log.Printf("[CATALOG] Created game id=%d name=%q", game.ID, game.Name)
	game, err = s.store.FindByID(ctx, game.ID)
	return game, true, err
}

func applyCreateInput(game *models.Game, name string, input CreateGameInput) {
	game.Name = name
	game.Slug = slug.Make(name)
	if input.Genre != nil {
		game.Genre = strings.TrimSpace(*input.Genre)
	}
	if input.Developer != nil {
		game.Developer = strings.TrimSpace(*input.Developer)
	}
	if input.Publisher != nil {
		game.Publisher = strings.TrimSpace(*input.Publisher)
	}
	if input.Platform != nil && strings.TrimSpace(*input.Platform) != "" {
		game.Platform = strings.TrimSpace(*input.Platform)
	}
	if input.PriceUSD != nil {
		game.PriceUSD = input.PriceUSD
	}
	if input.Rating != nil {
		game.Rating = input.Rating
	}
}

// PatchGame applies direct edits to game id.
func (s *GameService) PatchGame(ctx context.Context, id uint, input PatchGameInput) (*models.Game, error) {
	game, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.BadRequest("name must not be empty", nil)
		}
		game.Name = name
		game.Slug = slug.Make(name)
	}
	if input.Genre != nil {
		game.Genre = strings.TrimSpace(*input.Genre)
	}
	if input.Developer != nil {
		game.Developer = strings.TrimSpace(*input.Developer)
	}
	if input.Publisher != nil {
		game.Publisher = strings.TrimSpace(*input.Publisher)
	}
	if input.Categories != nil {
		game.Categories = strings.TrimSpace(*input.Categories)
	}
	if input.Platform != nil {
		game.Platform = strings.TrimSpace(*input.Platform)
	}
	if input.HoursPlayed != nil {
		game.HoursPlayed = *input.HoursPlayed
	}
	if input.PriceUSD != nil {
		game.PriceUSD = input.PriceUSD
	}
	if input.Rating != nil {
		game.Rating = input.Rating
	}
	if input.Completed != nil {
		game.Completed = *input.Completed
	}

	if err := s.store.Update(ctx, game); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, game.ID)
}

func (s *GameService) GetGame(ctx context.Context, id uint) (*models.Game, error) {
	return s.store.FindByID(ctx, id)
}

func (s *GameService) GetGameBySlug(ctx context.Context, slugValue string) (*models.Game, error) {
	return s.store.FindBySlug(ctx, slug.Make(slugValue))
}

func (s *GameService) ListGames(ctx context.Context, skip, limit int) ([]models.Game, error) {
	return s.store.List(ctx, skip, limit)
}
