package services

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/datatypes"
)

// Layouts the storefront uses for release dates, depending on the requested locale.
var releaseDateLayouts = []string{
	"2 Jan, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Jan 2 2006",
	"2 January, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"Jan 2006",
	"January 2006",
}

var releaseDateParser = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats:  releaseDateLayouts,
}

// parseReleaseDate returns nil for anything it cannot read ("Coming soon", "Q3 2025", "").
func parseReleaseDate(raw *string) *datatypes.Date {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return nil
	}
	t, err := releaseDateParser.With(time.Now().UTC()).Parse(s)
	if err != nil {
		return nil
	}
	d := datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &d
}
