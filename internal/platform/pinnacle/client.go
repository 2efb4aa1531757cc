// Package pinnacle fetches NBA player-prop lines from the Pinnacle guest API.
// Props arrive in two feeds joined by participant id: the matchup list names
// the player, category, and Over/Under participants; the per-matchup straight
// markets carry American prices and the line boundary.
package pinnacle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/oddsmath"
)

const (
	// DefaultBaseURL is the guest API root.
	DefaultBaseURL = "https://guest.api.arcadia.pinnacle.com/0.1"

	// DefaultAPIKey is the public key the guest web client ships with.
	DefaultAPIKey = "CmX2KcMrXuFmNg6YFbmTxE0y9CIrOi0R"

	leagueID = 487 // NBA
)

// categoryStats maps Pinnacle prop category names to stat categories. The
// same stat appears under more than one label depending on the feed vintage.
var categoryStats = map[string]domain.StatCategory{
	"Points":              domain.StatPoints,
	"Rebounds":            domain.StatRebounds,
	"Assists":             domain.StatAssists,
	"3-Point Field Goals": domain.StatThreePointersMade,
	"3 Point FG":          domain.StatThreePointersMade,
	"Steals":              domain.StatSteals,
	"Blocked Shots":       domain.StatBlocks,
	"Blocks":              domain.StatBlocks,
}

// Client fetches player-prop lines from Pinnacle.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Pinnacle client. Empty baseURL or apiKey use the guest
// defaults.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "pinnacle")),
	}
}

// prop identifies one Over or Under participant awaiting its price.
type prop struct {
	matchupID int
	player    string
	stat      domain.StatCategory
	over      bool
}

// Lines fetches the league matchups, filters them to supported player props,
// and prices them matchup by matchup. Failed price fetches degrade to partial
// data; every one failing is an error.
func (c *Client) Lines(ctx context.Context) ([]domain.SportsbookLine, error) {
	var matchups []matchup
	if err := c.doGet(ctx, fmt.Sprintf("/leagues/%d/matchups", leagueID), &matchups); err != nil {
		return nil, fmt.Errorf("pinnacle: fetch matchups: %w", err)
	}

	props := make(map[int]prop)
	var matchupIDs []int
	seenMatchup := make(map[int]bool)
	for _, m := range matchups {
		if m.Parent == nil || m.Special == nil {
			continue
		}
		player, category, ok := splitDescription(m.Special.Description)
		if !ok {
			continue
		}
		stat, ok := categoryStats[category]
		if !ok {
			continue
		}
		for _, p := range m.Participants {
			if p.Name != "Over" && p.Name != "Under" {
				continue
			}
			props[p.ID] = prop{matchupID: m.ID, player: player, stat: stat, over: p.Name == "Over"}
			if !seenMatchup[m.ID] {
				seenMatchup[m.ID] = true
				matchupIDs = append(matchupIDs, m.ID)
			}
		}
	}
	if len(matchupIDs) == 0 {
		return nil, nil
	}

	type lineKey struct {
		player string
		stat   domain.StatCategory
		line   float64
	}
	byKey := make(map[lineKey]int)
	var lines []domain.SportsbookLine
	failures := 0
	var lastErr error

	for _, mid := range matchupIDs {
		var markets []priceMarket
		if err := c.doGet(ctx, fmt.Sprintf("/matchups/%d/markets/straight", mid), &markets); err != nil {
			failures++
			lastErr = err
			c.logger.Warn("price fetch failed",
				slog.Int("matchup_id", mid),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, market := range markets {
			for _, pr := range market.Prices {
				ref, ok := props[pr.ParticipantID]
				if !ok {
					continue
				}
				dec, err := oddsmath.AmericanToDecimal(pr.Price)
				if err != nil {
					continue
				}
				key := lineKey{player: ref.player, stat: ref.stat, line: pr.Points}
				idx, ok := byKey[key]
				if !ok {
					lines = append(lines, domain.SportsbookLine{
						Source: domain.SourcePinnacle,
						Player: key.player,
						Stat:   key.stat,
						Line:   key.line,
					})
					idx = len(lines) - 1
					byKey[key] = idx
				}
				if ref.over {
					lines[idx].OverDecimal = dec
				} else {
					lines[idx].UnderDecimal = dec
				}
			}
		}
	}
	if failures == len(matchupIDs) {
		return nil, fmt.Errorf("pinnacle: all price fetches failed: %w", lastErr)
	}
	return lines, nil
}

// splitDescription parses "Luka Doncic (Points)" into its player and category.
func splitDescription(desc string) (player, category string, ok bool) {
	player, rest, found := strings.Cut(desc, "(")
	if !found {
		return "", "", false
	}
	category, _, found = strings.Cut(rest, ")")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(player), strings.TrimSpace(category), true
}

// doGet performs one guest API request and decodes the JSON response into out.
func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
