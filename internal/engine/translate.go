package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/calebwren/propbot/internal/domain"
)

// seriesStats maps an exchange series ticker to the stat its markets settle on.
var seriesStats = map[string]domain.StatCategory{
	"KXNBAPTS": domain.StatPoints,
	"KXNBAREB": domain.StatRebounds,
	"KXNBAAST": domain.StatAssists,
	"KXNBA3PT": domain.StatThreePointersMade,
	"KXNBASTL": domain.StatSteals,
	"KXNBABLK": domain.StatBlocks,
}

// titleRe captures player and threshold from titles like
// "Luka Doncic: 30+ points scored".
var titleRe = regexp.MustCompile(`^(.+?):\s*(\d+)\+\s+\w+`)

// ContractKey parses the entity key out of a market contract's title and
// series ticker. ok is false when the contract is not a recognized player
// prop; such contracts drop out of the pipeline without error.
func ContractKey(c domain.BinaryContract) (domain.EntityKey, bool) {
	series := c.SeriesTicker
	if series == "" {
		series, _, _ = strings.Cut(c.Ticker, "-")
	}
	stat, ok := seriesStats[series]
	if !ok {
		return domain.EntityKey{}, false
	}
	m := titleRe.FindStringSubmatch(c.Title)
	if m == nil {
		return domain.EntityKey{}, false
	}
	threshold, err := strconv.Atoi(m[2])
	if err != nil || threshold < 1 {
		return domain.EntityKey{}, false
	}
	return domain.EntityKey{Player: FoldName(m[1]), Stat: stat, Threshold: threshold}, true
}

// LineKey translates a sportsbook over/under boundary to the market threshold
// it prices. The translation is exact: a contract paying on "N+" corresponds
// only to an over at N - 0.5. Lines on any other boundary, including whole
// numbers and far-off half-integers, have no market equivalent.
func LineKey(l domain.SportsbookLine) (domain.EntityKey, bool) {
	n := l.Line + 0.5
	rounded := math.Round(n)
	if math.Abs(n-rounded) > 1e-9 || rounded < 1 {
		return domain.EntityKey{}, false
	}
	return domain.EntityKey{Player: FoldName(l.Player), Stat: l.Stat, Threshold: int(rounded)}, true
}
