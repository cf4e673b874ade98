// services/sync_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ImageMirror copies a remote header image somewhere we control and returns its public URL.
type ImageMirror interface {
	MirrorHeaderImage(ctx context.Context, externalID int, name, sourceURL string) (string, error)
}

type BatchStatus string

const (
	BatchSuccess BatchStatus = "success"
	BatchFailure BatchStatus = "failure"
)

// BatchResult is the outcome of one identifier in SyncMany. Success results carry LocalID and
// Name, failures carry Error.
type BatchResult struct {
	ExternalID int         `json:"external_id"`
	Status     BatchStatus `json:"status"`
	LocalID    uint        `json:"local_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func (r BatchResult) Succeeded() bool { return r.Status == BatchSuccess }

type SyncService struct {
	fetcher MetadataFetcher
	store   GameStore
	mirror  ImageMirror
}

func NewSyncService(fetcher MetadataFetcher, store GameStore) *SyncService {
	return &SyncService{fetcher: fetcher, store: store}
}

// WithImageMirror enables header image mirroring. A nil mirror disables it.
func (s *SyncService) WithImageMirror(mirror ImageMirror) *SyncService {
	s.mirror = mirror
	return s
}

// SyncOne fetches externalID from the storefront and creates or updates the matching game.
// Transport failures come back as UPSTREAM_ERROR, an unusable lookup as NOT_FOUND.
func (s *SyncService) SyncOne(ctx context.Context, externalID int) (*models.Game, error) {
	canonical, err := s.fetcher.FetchAppDetails(ctx, externalID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeFetch) {
			return nil, apperrors.Upstream(fmt.Sprintf("Steam API request failed for appid %d", externalID), err)
		}
		return nil, err
	}

	existing, err := s.store.FindByExternalID(ctx, canonical.ExternalID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return s.applyUpdate(ctx, existing, canonical)
	}

	game := &models.Game{
		ExternalID: intPtr(canonical.ExternalID),
		Platform:   models.DefaultPlatform,
	}
	s.applyCanonical(game, canonical)
	s.mirrorHeader(ctx, game, nil, canonical.ExternalID)

	if err := s.store.Insert(ctx, game); err != nil {
		if !apperrors.Is(err, apperrors.CodeConflict) {
			return nil, err
		}
		// Another sync inserted the same appid between our lookup and insert.
		log.Printf("[SYNC] ⚠️ Insert race on appid=%d, retrying as update", canonical.ExternalID)
		existing, findErr := s.store.FindByExternalID(ctx, canonical.ExternalID)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, err
		}
		// the header was already mirrored for this sync
		s.applyCanonical(existing, canonical)
		if s.mirror != nil {
			existing.HeaderImageMirrorURL = game.HeaderImageMirrorURL
		}
		return s.save(ctx, existing, canonical)
	}

	log.Printf("[SYNC] ✅ Created game id=%d appid=%d name=%q", game.ID, canonical.ExternalID, game.Name)
	return s.store.FindByID(ctx, game.ID)
}

func (s *SyncService) applyUpdate(ctx context.Context, game *models.Game, canonical *models.CanonicalGame) (*models.Game, error) {
	previousHeader := game.HeaderImage
	s.applyCanonical(game, canonical)
	s.mirrorHeader(ctx, game, previousHeader, canonical.ExternalID)
	return s.save(ctx, game, canonical)
}

func (s *SyncService) save(ctx context.Context, game *models.Game, canonical *models.CanonicalGame) (*models.Game, error) {
	if err := s.store.Update(ctx, game); err != nil {
		return nil, err
	}
	log.Printf("[SYNC] ✅ Updated game id=%d appid=%d name=%q", game.ID, canonical.ExternalID, game.Name)
	return s.store.FindByID(ctx, game.ID)
}

// applyCanonical overwrites every storefront-owned field of game. ID, CreatedAt and the
// hand-edited tracking columns are left alone.
func (s *SyncService) applyCanonical(game *models.Game, canonical *models.CanonicalGame) {
	game.Name = canonical.Name
	game.Slug = slug.Make(canonical.Name)
	game.Genre = joinList(canonical.Genres)
	game.Developer = joinList(canonical.Developers)
	game.Publisher = joinList(canonical.Publishers)
	game.Categories = joinList(canonical.Categories)
	game.ReleaseDate = parseReleaseDate(canonical.ReleaseDateRaw)
	if canonical.ReleaseDateRaw != nil && game.ReleaseDate == nil {
		log.Printf("[SYNC] appid=%d release date %q not parseable, leaving unset", canonical.ExternalID, *canonical.ReleaseDateRaw)
	}
	game.IsFree = canonical.IsFree
	game.MetacriticScore = canonical.MetacriticScore
	game.RecommendationsCount = canonical.RecommendationsCount
	game.HeaderImage = canonical.HeaderImage
	game.Languages = canonical.LanguagesRaw

	syncedAt := s.store.Now().UTC()
	game.LastSyncedAt = &syncedAt
}

func (s *SyncService) mirrorHeader(ctx context.Context, game *models.Game, previous *string, externalID int) {
	if s.mirror == nil {
		return
	}
	if game.HeaderImage == nil {
		game.HeaderImageMirrorURL = nil
		return
	}
	unchanged := previous != nil && *previous == *game.HeaderImage
	if unchanged && game.HeaderImageMirrorURL != nil {
		return
	}
	mirrored, err := s.mirror.MirrorHeaderImage(ctx, externalID, game.Name, *game.HeaderImage)
	if err != nil {
		log.Printf("[SYNC] ⚠️ Header image mirror failed for appid=%d: %v", externalID, err)
		return
	}
	game.HeaderImageMirrorURL = &mirrored
}

// SyncMany runs SyncOne for every id in order. It never fails as a whole: each id gets exactly
// one result, and a failing id does not affect the others.
func (s *SyncService) SyncMany(ctx context.Context, externalIDs []int) []BatchResult {
	runID := uuid.NewString()
	log.Printf("[SYNC] 📥 Batch %s: syncing %d appid(s)", runID, len(externalIDs))

	results := make([]BatchResult, 0, len(externalIDs))
	var succeeded, failed int
	for _, id := range externalIDs {
		var result BatchResult
		if err := ctx.Err(); err != nil {
			result = BatchResult{ExternalID: id, Status: BatchFailure, Error: err.Error()}
		} else {
			result = s.syncItem(ctx, id)
		}
		if result.Succeeded() {
			succeeded++
		} else {
			failed++
			log.Printf("[SYNC] ❌ Batch %s: appid=%d failed: %s", runID, id, result.Error)
		}
		results = append(results, result)
	}

	log.Printf("[SYNC] ✅ Batch %s done: %d succeeded, %d failed", runID, succeeded, failed)
	return results
}

func (s *SyncService) syncItem(ctx context.Context, externalID int) (result BatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = BatchResult{
				ExternalID: externalID,
				Status:     BatchFailure,
				Error:      fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	game, err := s.SyncOne(ctx, externalID)
	if err != nil {
		return BatchResult{ExternalID: externalID, Status: BatchFailure, Error: err.Error()}
	}
	return BatchResult{ExternalID: externalID, Status: BatchSuccess, LocalID: game.ID, Name: game.Name}
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func intPtr(v int) *int { return &v }
