package models

// CanonicalGame is one normalized storefront lookup, before it is rendered into a Game.
// List fields are never nil.
type CanonicalGame struct {
	ExternalID           int
	Name                 string
	Genres               []string
	Developers           []string
	Publishers           []string
	Categories           []string
	ReleaseDateRaw       *string
	IsFree               bool
	MetacriticScore      *int
	RecommendationsCount *int
	HeaderImage          *string
	LanguagesRaw         *string
}
