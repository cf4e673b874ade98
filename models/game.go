// models/game.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultPlatform = "PC"

// Game is one catalog entry. Synced entries always carry ExternalID (the Steam app id);
// manually created ones may not.
type Game struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ExternalID *int   `json:"steam_appid" gorm:"uniqueIndex"`
	Name       string `json:"name" gorm:"not null;index"`
	Slug       string `json:"slug" gorm:"index"`

	// Comma-joined renderings of the storefront lists. Never NULL.
	Genre      string `json:"genre" gorm:"not null;default:'';index"`
	Developer  string `json:"developer" gorm:"not null;default:''"`
	Publisher  string `json:"publisher" gorm:"not null;default:''"`
	Categories string `json:"categories" gorm:"not null;default:''"`

	ReleaseDate          *datatypes.Date `json:"release_date"`
	IsFree               bool            `json:"is_free" gorm:"not null;default:false"`
	MetacriticScore      *int            `json:"metacritic_score"`
	RecommendationsCount *int            `json:"recommendations_count"`
	HeaderImage          *string         `json:"header_image"`
	HeaderImageMirrorURL *string         `json:"header_image_mirror_url,omitempty"`
	Languages            *string         `json:"languages"`

	// Personal tracking columns, only edited by hand.
	Platform    string   `json:"platform" gorm:"not null;default:'PC'"`
	HoursPlayed int      `json:"hours_played" gorm:"not null;default:0"`
	PriceUSD    *float64 `json:"price_usd" gorm:"type:numeric(10,2)"`
	Rating      *float64 `json:"rating"`
	Completed   bool     `json:"completed" gorm:"not null;default:false"`

	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
