// Package draftkings fetches NBA player-prop lines from the DraftKings
// sportsbook content API. The endpoint is the public one the web client hits,
// so requests carry browser headers and no credentials.
package draftkings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/oddsmath"
)

const (
	// DefaultBaseURL is the league-subcategory markets endpoint.
	DefaultBaseURL = "https://sportsbook-nash.draftkings.com/sites/US-SB/api/sportscontent/controldata/league/leagueSubcategory/v1/markets"

	leagueID = "42648" // NBA
)

// subcategories lists the DraftKings player-prop subcategories the bot scans,
// in fetch order, with the stat each settles on.
var subcategories = []struct {
	id   int
	stat domain.StatCategory
}{
	{12488, domain.StatPoints},
	{12492, domain.StatRebounds},
	{12495, domain.StatAssists},
	{12497, domain.StatThreePointersMade},
	{12499, domain.StatSteals},
	{12500, domain.StatBlocks},
}

// Client fetches player-prop lines from DraftKings.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a DraftKings client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "draftkings")),
	}
}

// Lines fetches every subcategory and merges over/under selections into
// two-sided lines. One failing subcategory degrades to partial data; all of
// them failing is an error.
func (c *Client) Lines(ctx context.Context) ([]domain.SportsbookLine, error) {
	var lines []domain.SportsbookLine
	var lastErr error
	failures := 0
	for _, sub := range subcategories {
		payload, err := c.fetchSubcategory(ctx, sub.id)
		if err != nil {
			failures++
			lastErr = err
			c.logger.Warn("subcategory fetch failed",
				slog.Int("subcategory", sub.id),
				slog.String("stat", string(sub.stat)),
				slog.String("error", err.Error()),
			)
			continue
		}
		parsed := parseLines(payload, sub.stat)
		c.logger.Debug("subcategory fetched",
			slog.Int("subcategory", sub.id),
			slog.String("stat", string(sub.stat)),
			slog.Int("lines", len(parsed)),
		)
		lines = append(lines, parsed...)
	}
	if failures == len(subcategories) {
		return nil, fmt.Errorf("draftkings: all subcategories failed: %w", lastErr)
	}
	return lines, nil
}

// fetchSubcategory performs one markets request filtered to a subcategory.
func (c *Client) fetchSubcategory(ctx context.Context, subcategoryID int) (payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+buildQuery(subcategoryID), nil)
	if err != nil {
		return payload{}, fmt.Errorf("draftkings: create request: %w", err)
	}
	// The API rejects non-browser traffic.
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Origin", "https://sportsbook.draftkings.com")
	req.Header.Set("Referer", "https://sportsbook.draftkings.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return payload{}, fmt.Errorf("draftkings: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload{}, fmt.Errorf("draftkings: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return payload{}, fmt.Errorf("draftkings: HTTP %d", resp.StatusCode)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return payload{}, fmt.Errorf("draftkings: decode response: %w", err)
	}
	return p, nil
}

// buildQuery reproduces the OData-style filters the DraftKings web client
// sends for a league subcategory.
func buildQuery(subcategoryID int) string {
	eventsQ := fmt.Sprintf("$filter=leagueId eq '%s' AND clientMetadata/Subcategories/any(s: s/Id eq '%d')", leagueID, subcategoryID)
	marketsQ := fmt.Sprintf("$filter=clientMetadata/subCategoryId eq '%d' AND tags/all(t: t ne 'SportcastBetBuilder')", subcategoryID)

	v := url.Values{}
	v.Set("isBatchable", "false")
	v.Set("templateVars", fmt.Sprintf("%s,%d", leagueID, subcategoryID))
	v.Set("eventsQuery", eventsQ)
	v.Set("marketsQuery", marketsQ)
	v.Set("include", "Events")
	v.Set("entity", "event")
	return v.Encode()
}

// parseLines joins selections to their markets and merges the Over and Under
// of each (player, line) into one two-sided record.
func parseLines(p payload, stat domain.StatCategory) []domain.SportsbookLine {
	if len(p.Markets) == 0 || len(p.Selections) == 0 {
		return nil
	}
	marketIDs := make(map[string]struct{}, len(p.Markets))
	for _, m := range p.Markets {
		marketIDs[m.ID] = struct{}{}
	}

	type lineKey struct {
		player string
		line   float64
	}
	byKey := make(map[lineKey]int)
	var lines []domain.SportsbookLine

	for _, sel := range p.Selections {
		if _, ok := marketIDs[sel.MarketID]; !ok {
			continue
		}
		if len(sel.Participants) == 0 || sel.Participants[0].Name == "" {
			continue
		}
		if sel.Label != "Over" && sel.Label != "Under" {
			continue
		}
		odds := sel.decimalOdds()

		key := lineKey{player: sel.Participants[0].Name, line: sel.Points}
		idx, ok := byKey[key]
		if !ok {
			lines = append(lines, domain.SportsbookLine{
				Source: domain.SourceDraftKings,
				Player: key.player,
				Stat:   stat,
				Line:   key.line,
			})
			idx = len(lines) - 1
			byKey[key] = idx
		}
		if sel.Label == "Over" {
			lines[idx].OverDecimal = odds
		} else {
			lines[idx].UnderDecimal = odds
		}
	}
	return lines
}

// decimalOdds prefers the exact trueOdds decimal; when absent it falls back
// to converting the display American odds, tolerating the Unicode minus the
// API uses.
func (s selection) decimalOdds() float64 {
	if s.TrueOdds > 0 {
		return s.TrueOdds
	}
	american := strings.ReplaceAll(s.DisplayOdds.American, "−", "-")
	if american == "" {
		return 0
	}
	a, err := strconv.ParseFloat(american, 64)
	if err != nil {
		return 0
	}
	dec, err := oddsmath.AmericanToDecimal(a)
	if err != nil {
		return 0
	}
	return dec
}
