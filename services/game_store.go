// services/game_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GameStore is the persistence contract the sync flow and the catalog endpoints depend on.
type GameStore interface {
	FindByExternalID(ctx context.Context, externalID int) (*models.Game, error)
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	FindBySlug(ctx context.Context, slug string) (*models.Game, error)
	Insert(ctx context.Context, game *models.Game) error
	Update(ctx context.Context, game *models.Game) error
	List(ctx context.Context, offset, limit int) ([]models.Game, error)
	ListExternalIDs(ctx context.Context) ([]int, error)
	Count(ctx context.Context) (int64, error)
	// Now is the clock the store stamps created_at and updated_at with.
	Now() time.Time
}

type GormGameStore struct {
	DB *gorm.DB
}

func NewGormGameStore(db *gorm.DB) *GormGameStore {
	return &GormGameStore{DB: db}
}

var _ GameStore = (*GormGameStore)(nil)

// FindByExternalID returns (nil, nil) when no game carries externalID.
func (s *GormGameStore) FindByExternalID(ctx context.Context, externalID int) (*models.Game, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game by external_id %d: %w", externalID, err)
	}
	return &game, nil
}

func (s *GormGameStore) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Game not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("find game %d: %w", id, err)
	}
	return &game, nil
}

func (s *GormGameStore) FindBySlug(ctx context.Context, slug string) (*models.Game, error) {
	var game models.Game
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).Order("id").First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Game not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("find game by slug %q: %w", slug, err)
	}
	return &game, nil
}

// Insert assigns ID, CreatedAt and UpdatedAt. A duplicate external_id yields a CONFLICT error.
func (s *GormGameStore) Insert(ctx context.Context, game *models.Game) error {
	if err := s.DB.WithContext(ctx).Create(game).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a game with this Steam appid already exists", err)
		}
		return fmt.Errorf("insert game %q: %w", game.Name, err)
	}
	return nil
}

// Update overwrites every column but id and created_at, and refreshes UpdatedAt.
func (s *GormGameStore) Update(ctx context.Context, game *models.Game) error {
	if game.ID == 0 {
		return apperrors.Internal("cannot update a game without id", nil)
	}
	res := s.DB.WithContext(ctx).Model(game).Select("*").Omit("id", "created_at").Updates(game)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return apperrors.Conflict("a game with this Steam appid already exists", res.Error)
		}
		return fmt.Errorf("update game %d: %w", game.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Game not found", nil)
	}
	return nil
}

// List pages through games by ascending id.
func (s *GormGameStore) List(ctx context.Context, offset, limit int) ([]models.Game, error) {
	games := []models.Game{}
	err := s.DB.WithContext(ctx).Order("id asc").Offset(offset).Limit(limit).Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *GormGameStore) ListExternalIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	err := s.DB.WithContext(ctx).Model(&models.Game{}).
		Where("external_id IS NOT NULL").
		Order("id asc").
		Pluck("external_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list external ids: %w", err)
	}
	return ids, nil
}

func (s *GormGameStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Game{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

func (s *GormGameStore) Now() time.Time {
	return s.DB.NowFunc()
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
