package snapshot

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/calebwren/propbot/internal/domain"
)

func TestContractsRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := []domain.BinaryContract{
		{
			Ticker:       "KXNBAPTS-25NOV28LALDAL-LUK30",
			SeriesTicker: "KXNBAPTS",
			Title:        "Luka Doncic: 30+ points scored",
			YesBid:       42, YesAsk: 45, NoBid: 55, NoAsk: 58,
		},
		{
			Ticker: "KXNBAREB-25NOV28LALDAL-ADA12",
			Title:  "Anthony Davis: 12+ rebounds",
			YesAsk: 30, NoAsk: 72,
		},
	}

	if err := s.WriteContracts(want); err != nil {
		t.Fatalf("WriteContracts: %v", err)
	}
	got, err := s.ReadContracts()
	if err != nil {
		t.Fatalf("ReadContracts: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestReadContractsMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.ReadContracts(); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestReadContractsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ContractsFile)
	if err := os.WriteFile(path, []byte("ticker,series_ticker,title,yes_bid,yes_ask,no_bid,no_ask\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir).ReadContracts(); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestReadContractsToleratesMissingOptionalColumns(t *testing.T) {
	dir := t.TempDir()
	body := "ticker,title,yes_ask,no_ask\n" +
		"KXNBAPTS-X-30,Luka Doncic: 30+ points scored,45,58\n"
	if err := os.WriteFile(filepath.Join(dir, ContractsFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := New(dir).ReadContracts()
	if err != nil {
		t.Fatalf("ReadContracts: %v", err)
	}
	want := []domain.BinaryContract{{
		Ticker: "KXNBAPTS-X-30",
		Title:  "Luka Doncic: 30+ points scored",
		YesAsk: 45, NoAsk: 58,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("contracts = %+v, want %+v", got, want)
	}
}

func TestReadContractsRequiresTickerColumn(t *testing.T) {
	dir := t.TempDir()
	body := "title,yes_ask\nsomething,45\n"
	if err := os.WriteFile(filepath.Join(dir, ContractsFile), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir).ReadContracts(); err == nil {
		t.Fatal("err = nil, want missing-column failure")
	}
}

func TestLinesRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := []domain.SportsbookLine{
		{
			Source: domain.SourceDraftKings,
			Player: "Luka Doncic",
			Stat:   domain.StatPoints,
			Line:   29.5,
			OverDecimal: 1.87, UnderDecimal: 1.95,
		},
		{
			Source: domain.SourceUnderdog,
			Player: "Anthony Davis",
			Stat:   domain.StatRebounds,
			Line:   11.5,
			UnderMultiplier: 1.2,
		},
	}

	if err := s.WriteLines(domain.SourceDraftKings, want); err != nil {
		t.Fatalf("WriteLines: %v", err)
	}
	got, err := s.ReadLines(domain.SourceDraftKings)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestReadLinesMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.ReadLines(domain.SourcePinnacle); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestWriteEdges(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	edges := []domain.Edge{{
		Key:        domain.EntityKey{Player: "luka doncic", Stat: domain.StatPoints, Threshold: 30},
		Ticker:     "KXNBAPTS-X-30",
		Side:       domain.SideYes,
		PriceCents: 45,
		FairProb:   0.50649,
		EdgeCents:  5.6,
		Sources:    []domain.Source{domain.SourceDraftKings, domain.SourcePinnacle},
	}}

	if err := s.WriteEdges(edges); err != nil {
		t.Fatalf("WriteEdges: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, EdgesFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}
	want := []string{"KXNBAPTS-X-30", "luka doncic", "points", "30", "yes", "45", "0.5065", "5.6", "draftkings+pinnacle"}
	if !reflect.DeepEqual(records[1], want) {
		t.Errorf("row = %v, want %v", records[1], want)
	}
}

func TestWriteCombined(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	contracts := []domain.BinaryContract{
		{
			Ticker:       "KXNBAPTS-X-LUK30",
			SeriesTicker: "KXNBAPTS",
			Title:        "Luka Dončić: 30+ points scored",
			YesBid:       42, YesAsk: 45, NoBid: 55, NoAsk: 58,
		},
		{
			Ticker:       "KXNBAAST-X-HAL9",
			SeriesTicker: "KXNBAAST",
			Title:        "Tyrese Haliburton: 9+ assists",
			YesAsk:       50, NoAsk: 52,
		},
	}
	lines := []domain.SportsbookLine{
		{Source: domain.SourceDraftKings, Player: "Luka Doncic", Stat: domain.StatPoints, Line: 29.5, OverDecimal: 1.87, UnderDecimal: 1.95},
		{Source: domain.SourceUnderdog, Player: "LUKA DONCIC", Stat: domain.StatPoints, Line: 29.5, OverMultiplier: 1.0, UnderMultiplier: 0.9},
		// Different threshold; must not join.
		{Source: domain.SourcePinnacle, Player: "Luka Doncic", Stat: domain.StatPoints, Line: 27.5, OverDecimal: 1.5, UnderDecimal: 2.6},
	}

	if err := s.WriteCombined(contracts, lines); err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, CombinedFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	// Sorted by player: doncic before haliburton.
	luka := records[1]
	want := []string{
		"luka doncic", "points", "30", "KXNBAPTS-X-LUK30",
		"42", "45", "55", "58",
		"1.87", "1.95",
		"", "",
		"1", "0.9",
	}
	if !reflect.DeepEqual(luka, want) {
		t.Errorf("row = %v, want %v", luka, want)
	}
	if got := records[2][0]; got != "tyrese haliburton" {
		t.Errorf("second row player = %q", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.WriteEdges(nil); err != nil {
		t.Fatalf("WriteEdges: %v", err)
	}
	if err := s.WriteEdges(nil); err != nil {
		t.Fatalf("WriteEdges again: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("stray temp file %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("got %d files, want just %s", len(entries), EdgesFile)
	}
}
