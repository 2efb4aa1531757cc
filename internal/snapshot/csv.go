// Package snapshot persists fetched contracts, sportsbook lines, and scan
// results as CSV files so fetch and scan can run as separate invocations.
// Writes go to a temp file in the same directory and rename over the target,
// so a reader never sees a half-written snapshot.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/calebwren/propbot/internal/engine"
)

// Snapshot file names inside the data directory.
const (
	ContractsFile = "nba_player_props.csv"
	EdgesFile     = "edges.csv"
	CombinedFile  = "combined_odds.csv"
)

// LinesFile returns the snapshot file name for one sportsbook source.
func LinesFile(source domain.Source) string {
	return string(source) + "_nba_props.csv"
}

var (
	contractsHeader = []string{"ticker", "series_ticker", "title", "yes_bid", "yes_ask", "no_bid", "no_ask"}
	linesHeader     = []string{"source", "player", "stat", "line", "over_decimal", "under_decimal", "over_multiplier", "under_multiplier"}
	edgesHeader     = []string{"ticker", "player", "stat", "threshold", "side", "price_cents", "fair_prob", "edge_cents", "sources"}
	combinedHeader  = []string{
		"player", "stat", "threshold", "ticker",
		"kalshi_yes_bid", "kalshi_yes_ask", "kalshi_no_bid", "kalshi_no_ask",
		"draftkings_over", "draftkings_under",
		"pinnacle_over", "pinnacle_under",
		"underdog_over", "underdog_under",
	}
)

// Store reads and writes snapshot files under one data directory.
type Store struct {
	dir string
}

// New creates a snapshot store rooted at dir. The directory is created on
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the absolute location of a snapshot file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// WriteContracts replaces the contract snapshot.
func (s *Store) WriteContracts(contracts []domain.BinaryContract) error {
	rows := make([][]string, len(contracts))
	for i, c := range contracts {
		rows[i] = []string{
			c.Ticker,
			c.SeriesTicker,
			c.Title,
			strconv.Itoa(c.YesBid),
			strconv.Itoa(c.YesAsk),
			strconv.Itoa(c.NoBid),
			strconv.Itoa(c.NoAsk),
		}
	}
	return s.writeFile(ContractsFile, contractsHeader, rows)
}

// ReadContracts loads the contract snapshot. A missing or empty snapshot is
// domain.ErrNoSnapshot; callers treat that as fatal when the data is
// required for the run.
func (s *Store) ReadContracts() ([]domain.BinaryContract, error) {
	records, idx, err := s.readFile(ContractsFile, "ticker", "title")
	if err != nil {
		return nil, err
	}
	contracts := make([]domain.BinaryContract, 0, len(records))
	for _, rec := range records {
		ticker := field(rec, idx, "ticker")
		if ticker == "" {
			continue
		}
		contracts = append(contracts, domain.BinaryContract{
			Ticker:       ticker,
			SeriesTicker: field(rec, idx, "series_ticker"),
			Title:        field(rec, idx, "title"),
			YesBid:       parseInt(field(rec, idx, "yes_bid")),
			YesAsk:       parseInt(field(rec, idx, "yes_ask")),
			NoBid:        parseInt(field(rec, idx, "no_bid")),
			NoAsk:        parseInt(field(rec, idx, "no_ask")),
		})
	}
	return contracts, nil
}

// WriteLines replaces one source's line snapshot.
func (s *Store) WriteLines(source domain.Source, lines []domain.SportsbookLine) error {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{
			string(l.Source),
			l.Player,
			string(l.Stat),
			formatFloat(l.Line),
			formatFloat(l.OverDecimal),
			formatFloat(l.UnderDecimal),
			formatFloat(l.OverMultiplier),
			formatFloat(l.UnderMultiplier),
		}
	}
	return s.writeFile(LinesFile(source), linesHeader, rows)
}

// ReadLines loads one source's line snapshot. Missing or empty is
// domain.ErrNoSnapshot, judged per enabled source by the caller.
func (s *Store) ReadLines(source domain.Source) ([]domain.SportsbookLine, error) {
	records, idx, err := s.readFile(LinesFile(source), "player", "stat", "line")
	if err != nil {
		return nil, err
	}
	lines := make([]domain.SportsbookLine, 0, len(records))
	for _, rec := range records {
		player := field(rec, idx, "player")
		if player == "" {
			continue
		}
		src := domain.Source(field(rec, idx, "source"))
		if src == "" {
			src = source
		}
		lines = append(lines, domain.SportsbookLine{
			Source:          src,
			Player:          player,
			Stat:            domain.StatCategory(field(rec, idx, "stat")),
			Line:            parseFloat(field(rec, idx, "line")),
			OverDecimal:     parseFloat(field(rec, idx, "over_decimal")),
			UnderDecimal:    parseFloat(field(rec, idx, "under_decimal")),
			OverMultiplier:  parseFloat(field(rec, idx, "over_multiplier")),
			UnderMultiplier: parseFloat(field(rec, idx, "under_multiplier")),
		})
	}
	return lines, nil
}

// WriteEdges replaces the scan output snapshot. Edges are written in the
// order given, which the scanner has already ranked.
func (s *Store) WriteEdges(edges []domain.Edge) error {
	rows := make([][]string, len(edges))
	for i, e := range edges {
		sources := make([]string, len(e.Sources))
		for j, src := range e.Sources {
			sources[j] = string(src)
		}
		rows[i] = []string{
			e.Ticker,
			e.Key.Player,
			string(e.Key.Stat),
			strconv.Itoa(e.Key.Threshold),
			string(e.Side),
			strconv.Itoa(e.PriceCents),
			strconv.FormatFloat(e.FairProb, 'f', 4, 64),
			strconv.FormatFloat(e.EdgeCents, 'f', 1, 64),
			strings.Join(sources, "+"),
		}
	}
	return s.writeFile(EdgesFile, edgesHeader, rows)
}

// WriteCombined joins the contract snapshot with every source's lines into
// one comparison table: each recognized player prop with the market's bid/ask
// and each book's over/under quote (decimal odds, or payout multipliers for
// multiplier books). Rows are sorted by player, stat, threshold.
func (s *Store) WriteCombined(contracts []domain.BinaryContract, lines []domain.SportsbookLine) error {
	type quote struct {
		over, under float64
	}
	books := make(map[domain.EntityKey]map[domain.Source]quote)
	for _, l := range lines {
		key, ok := engine.LineKey(l)
		if !ok {
			continue
		}
		over, under := l.OverDecimal, l.UnderDecimal
		if !l.HasDecimal() {
			over, under = l.OverMultiplier, l.UnderMultiplier
		}
		if books[key] == nil {
			books[key] = make(map[domain.Source]quote)
		}
		books[key][l.Source] = quote{over: over, under: under}
	}

	type row struct {
		key domain.EntityKey
		rec []string
	}
	var rows []row
	for _, c := range contracts {
		key, ok := engine.ContractKey(c)
		if !ok {
			continue
		}
		rec := []string{
			key.Player,
			string(key.Stat),
			strconv.Itoa(key.Threshold),
			c.Ticker,
			formatPrice(c.YesBid),
			formatPrice(c.YesAsk),
			formatPrice(c.NoBid),
			formatPrice(c.NoAsk),
		}
		for _, src := range []domain.Source{domain.SourceDraftKings, domain.SourcePinnacle, domain.SourceUnderdog} {
			q := books[key][src]
			rec = append(rec, formatFloat(q.over), formatFloat(q.under))
		}
		rows = append(rows, row{key: key, rec: rec})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].key, rows[j].key
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		if a.Stat != b.Stat {
			return a.Stat < b.Stat
		}
		return a.Threshold < b.Threshold
	})

	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = r.rec
	}
	return s.writeFile(CombinedFile, combinedHeader, recs)
}

// writeFile writes header+rows to a temp file and renames it over name.
func (s *Store) writeFile(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	w := csv.NewWriter(tmp)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(rows) // flushes
	}
	if err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: replace %s: %w", name, err)
	}
	return nil
}

// readFile loads a snapshot's data records and its header index, verifying
// the required columns exist. Missing files and files with no data rows are
// domain.ErrNoSnapshot.
func (s *Store) readFile(name string, required ...string) ([][]string, map[string]int, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("snapshot: %s: %w", name, domain.ErrNoSnapshot)
		}
		return nil, nil, fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("snapshot: %s is empty: %w", name, domain.ErrNoSnapshot)
	}
	idx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("snapshot: %s missing %q column", name, col)
		}
	}
	return records[1:], idx, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// formatFloat renders a quote value, leaving unset (zero) values blank the
// way missing sides come back from the books.
func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPrice renders a price in cents, blank when there is no quote.
func formatPrice(cents int) string {
	if cents == 0 {
		return ""
	}
	return strconv.Itoa(cents)
}
