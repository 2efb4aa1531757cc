// Package underdog fetches NBA player-prop lines from the Underdog Fantasy
// pick'em API. Lines pay a per-side payout multiplier instead of odds; the
// normalizer treats a two-sided pair like a decimal book and uses the single
// multiplier directly when a side is missing.
package underdog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/calebwren/propbot/internal/domain"
)

const (
	// DefaultBaseURL is the public pick'em API root.
	DefaultBaseURL = "https://api.underdogfantasy.com"

	linesPath = "/beta/v6/over_under_lines"

	sportNBA = "NBA"
)

// statNames maps Underdog display stats to stat categories. Combo stats
// ("Pts + Rebs + Asts") have no market equivalent and fall through.
var statNames = map[string]domain.StatCategory{
	"Points":          domain.StatPoints,
	"Rebounds":        domain.StatRebounds,
	"Assists":         domain.StatAssists,
	"3-Pointers Made": domain.StatThreePointersMade,
	"Steals":          domain.StatSteals,
	"Blocks":          domain.StatBlocks,
}

// Client fetches player-prop lines from Underdog Fantasy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an Underdog client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "underdog")),
	}
}

// Lines fetches the over/under board and joins players, appearances, and
// line options into two-sided multiplier lines for NBA players.
func (c *Client) Lines(ctx context.Context) ([]domain.SportsbookLine, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+linesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("underdog: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("underdog: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("underdog: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("underdog: HTTP %d", resp.StatusCode)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("underdog: decode response: %w", err)
	}

	lines := parseLines(p)
	c.logger.Debug("board fetched",
		slog.Int("players", len(p.Players)),
		slog.Int("board_lines", len(p.OverUnderLines)),
		slog.Int("lines", len(lines)),
	)
	return lines, nil
}

// parseLines resolves each line's appearance to an NBA player and merges its
// higher/lower options into one record per (player, stat, line). Suspended
// lines, unknown stats, and non-NBA players are dropped.
func parseLines(p payload) []domain.SportsbookLine {
	playersByID := make(map[string]player, len(p.Players))
	for _, pl := range p.Players {
		if pl.SportID != sportNBA {
			continue
		}
		playersByID[pl.ID] = pl
	}

	names := make(map[string]string, len(p.Appearances))
	for _, a := range p.Appearances {
		pl, ok := playersByID[a.PlayerID]
		if !ok || pl.PositionID != a.PositionID || pl.TeamID != a.TeamID {
			continue
		}
		names[a.ID] = pl.FirstName + " " + pl.LastName
	}

	type lineKey struct {
		player string
		stat   domain.StatCategory
		line   float64
	}
	byKey := make(map[lineKey]int)
	var lines []domain.SportsbookLine

	for _, l := range p.OverUnderLines {
		if l.Status == "suspended" {
			continue
		}
		name, ok := names[l.OverUnder.AppearanceStat.AppearanceID]
		if !ok {
			continue
		}
		stat, ok := statNames[l.OverUnder.AppearanceStat.DisplayStat]
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(l.StatValue, 64)
		if err != nil {
			continue
		}
		for _, opt := range l.Options {
			over, ok := optionSide(opt.Choice)
			if !ok {
				continue
			}
			mult, err := strconv.ParseFloat(opt.PayoutMultiplier, 64)
			if err != nil || mult <= 0 {
				continue
			}
			key := lineKey{player: name, stat: stat, line: value}
			idx, ok := byKey[key]
			if !ok {
				lines = append(lines, domain.SportsbookLine{
					Source: domain.SourceUnderdog,
					Player: key.player,
					Stat:   key.stat,
					Line:   key.line,
				})
				idx = len(lines) - 1
				byKey[key] = idx
			}
			if over {
				lines[idx].OverMultiplier = mult
			} else {
				lines[idx].UnderMultiplier = mult
			}
		}
	}
	return lines
}

// optionSide maps an option choice to its side of the line. The feed says
// "higher"/"lower"; older payloads already say "over"/"under".
func optionSide(choice string) (over, ok bool) {
	switch choice {
	case "higher", "over":
		return true, true
	case "lower", "under":
		return false, true
	}
	return false, false
}
