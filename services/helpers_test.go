package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/database"
	"game-catalog-sync/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory SQLite catalog whose clock advances one second per call,
// so UpdatedAt comparisons are deterministic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	var mu sync.Mutex
	tick := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}

	db, err := database.Open(":memory:", database.WithNowFunc(clock))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

type fakeFetcher struct {
	mu     sync.Mutex
	games  map[int]*models.CanonicalGame
	errs   map[int]error
	panics map[int]bool
	calls  []int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		games:  map[int]*models.CanonicalGame{},
		errs:   map[int]error{},
		panics: map[int]bool{},
	}
}

func (f *fakeFetcher) set(g *models.CanonicalGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[g.ExternalID] = g
}

func (f *fakeFetcher) FetchAppDetails(_ context.Context, appID int) (*models.CanonicalGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, appID)
	if f.panics[appID] {
		panic(fmt.Sprintf("decoder blew up on %d", appID))
	}
	if err, ok := f.errs[appID]; ok {
		return nil, err
	}
	if g, ok := f.games[appID]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, apperrors.NotFound(fmt.Sprintf("Steam API did not return data for appid %d", appID), nil)
}

func canonical(id int, name string) *models.CanonicalGame {
	return &models.CanonicalGame{
		ExternalID: id,
		Name:       name,
		Genres:     []string{},
		Developers: []string{},
		Publishers: []string{},
		Categories: []string{},
	}
}

func strPtr(s string) *string { return &s }
