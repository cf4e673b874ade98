// services/steam_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"game-catalog-sync/apperrors"
	"game-catalog-sync/models"
	"game-catalog-sync/utils"

	"golang.org/x/text/unicode/norm"
)

// MetadataFetcher looks up one game on the storefront.
type MetadataFetcher interface {
	FetchAppDetails(ctx context.Context, appID int) (*models.CanonicalGame, error)
}

type SteamClient struct {
	BaseURL    string // e.g., "https://store.steampowered.com/api/appdetails"
	Country    string // optional "cc" param, drives price/region data
	Language   string // optional "l" param
	HTTPClient *http.Client
}

func NewSteamClient(baseURL string, timeout time.Duration) *SteamClient {
	return &SteamClient{
		BaseURL:    baseURL,
		HTTPClient: utils.NewHTTPClient(timeout),
	}
}

var _ MetadataFetcher = (*SteamClient)(nil)

// appDetailsEntry is the value stored under the app id key of the response.
type appDetailsEntry struct {
	Success optionalBool    `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type appDetailsData struct {
	SteamAppID         optionalInt     `json:"steam_appid"`
	Name               optionalString  `json:"name"`
	Genres             describedList   `json:"genres"`
	Developers         describedList   `json:"developers"`
	Publishers         describedList   `json:"publishers"`
	Categories         describedList   `json:"categories"`
	ReleaseDate        releaseDateInfo `json:"release_date"`
	IsFree             optionalBool    `json:"is_free"`
	Metacritic         scoreInfo       `json:"metacritic"`
	Recommendations    totalInfo       `json:"recommendations"`
	HeaderImage        optionalString  `json:"header_image"`
	SupportedLanguages optionalString  `json:"supported_languages"`
}

// FetchAppDetails issues exactly one request for appID and normalizes the answer.
func (c *SteamClient) FetchAppDetails(ctx context.Context, appID int) (*models.CanonicalGame, error) {
	endpoint, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, apperrors.Fetch(fmt.Sprintf("invalid steam API URL %q", c.BaseURL), err)
	}
	q := endpoint.Query()
	q.Set("appids", strconv.Itoa(appID))
	if c.Country != "" {
		q.Set("cc", c.Country)
	}
	if c.Language != "" {
		q.Set("l", c.Language)
	}
	endpoint.RawQuery = q.Encode()
	finalURL := endpoint.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, apperrors.Fetch("failed to build steam request", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[STEAM] ➡️  GET %s", finalURL)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, apperrors.Fetch("network error calling Steam API", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[STEAM] ❌ appid=%d returned %d: %s", appID, resp.StatusCode, string(body))
		return nil, apperrors.Fetch(fmt.Sprintf("Steam API returned status %d", resp.StatusCode), nil)
	}

	// Entries are decoded one by one so a malformed sibling cannot spoil the requested id.
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, apperrors.Fetch("failed to decode Steam API response", err)
	}

	return normalizeAppDetails(appID, envelope)
}

func normalizeAppDetails(appID int, envelope map[string]json.RawMessage) (*models.CanonicalGame, error) {
	raw, ok := envelope[strconv.Itoa(appID)]
	var entry appDetailsEntry
	if ok {
		// a non-object entry counts as success:false
		if err := json.Unmarshal(raw, &entry); err != nil {
			entry = appDetailsEntry{}
		}
	}
	if !ok || !entry.Success.Value {
		return nil, apperrors.NotFound(fmt.Sprintf("Steam API did not return data for appid %d", appID), nil)
	}

	var data appDetailsData
	trimmed := bytes.TrimSpace(entry.Data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperrors.NotFound(fmt.Sprintf("Steam API returned no data object for appid %d", appID), nil)
	}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return nil, apperrors.NotFound(fmt.Sprintf("Steam API returned unusable data for appid %d", appID), err)
	}

	name := cleanText(data.Name.Value)
	if name == "" {
		return nil, apperrors.NotFound(fmt.Sprintf("No game name returned from Steam for appid %d", appID), nil)
	}

	externalID := appID
	if data.SteamAppID.Value != nil && *data.SteamAppID.Value > 0 {
		externalID = *data.SteamAppID.Value
	}

	return &models.CanonicalGame{
		ExternalID:           externalID,
		Name:                 name,
		Genres:               data.Genres.items(),
		Developers:           data.Developers.items(),
		Publishers:           data.Publishers.items(),
		Categories:           data.Categories.items(),
		ReleaseDateRaw:       data.ReleaseDate.Date.ptr(),
		IsFree:               data.IsFree.Value,
		MetacriticScore:      data.Metacritic.Score.Value,
		RecommendationsCount: data.Recommendations.Total.Value,
		HeaderImage:          data.HeaderImage.ptr(),
		LanguagesRaw:         data.SupportedLanguages.ptr(),
	}, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// describedList accepts either plain strings or {"description": "..."} objects and drops
// anything else. Absent, null or non-array values decode to an empty list.
type describedList []string

func (l *describedList) UnmarshalJSON(b []byte) error {
	*l = describedList{}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	for _, elem := range raw {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			if s = cleanText(s); s != "" {
				*l = append(*l, s)
			}
			continue
		}
		var obj struct {
			Description *string `json:"description"`
		}
		if err := json.Unmarshal(elem, &obj); err == nil && obj.Description != nil {
			if s = cleanText(*obj.Description); s != "" {
				*l = append(*l, s)
			}
		}
	}
	return nil
}

func (l describedList) items() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

type optionalString struct{ Value string }

func (o *optionalString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		o.Value = s
	}
	return nil
}

func (o optionalString) ptr() *string {
	if strings.TrimSpace(o.Value) == "" {
		return nil
	}
	v := o.Value
	return &v
}

// optionalInt accepts JSON numbers and numeric strings; anything else leaves it unset.
type optionalInt struct{ Value *int }

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		o.Value = &i
	} else if f, err := n.Float64(); err == nil && inIntRange(f) {
		i := int(f)
		o.Value = &i
	}
	return nil
}

func inIntRange(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f < float64(math.MaxInt) && f >= float64(math.MinInt)
}

// optionalBool coerces the value to a boolean the way a loose truthiness check would.
type optionalBool struct{ Value bool }

func (o *optionalBool) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case bool:
		o.Value = t
	case float64:
		o.Value = t != 0
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			o.Value = parsed
		} else {
			o.Value = t != ""
		}
	default:
		o.Value = false
	}
	return nil
}

type releaseDateInfo struct {
	ComingSoon optionalBool   `json:"coming_soon"`
	Date       optionalString `json:"date"`
}

func (r *releaseDateInfo) UnmarshalJSON(b []byte) error {
	type plain releaseDateInfo
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*r = releaseDateInfo(p)
	return nil
}

type scoreInfo struct {
	Score optionalInt `json:"score"`
}

func (s *scoreInfo) UnmarshalJSON(b []byte) error {
	type plain scoreInfo
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*s = scoreInfo(p)
	return nil
}

type totalInfo struct {
	Total optionalInt `json:"total"`
}

func (t *totalInfo) UnmarshalJSON(b []byte) error {
	type plain totalInfo
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*t = totalInfo(p)
	return nil
}
