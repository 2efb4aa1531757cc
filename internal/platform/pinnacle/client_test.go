package pinnacle

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebwren/propbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplitDescription(t *testing.T) {
	tests := []struct {
		desc     string
		player   string
		category string
		ok       bool
	}{
		{"Luka Doncic (Points)", "Luka Doncic", "Points", true},
		{"Victor Wembanyama (Blocked Shots)", "Victor Wembanyama", "Blocked Shots", true},
		{" Stephen Curry  (3 Point FG) ", "Stephen Curry", "3 Point FG", true},
		{"Total Points", "", "", false},
		{"Broken (unclosed", "", "", false},
	}

	for _, tt := range tests {
		player, category, ok := splitDescription(tt.desc)
		if ok != tt.ok || player != tt.player || category != tt.category {
			t.Errorf("splitDescription(%q) = %q, %q, %v; want %q, %q, %v",
				tt.desc, player, category, ok, tt.player, tt.category, tt.ok)
		}
	}
}

func TestLinesJoinsPricesByParticipant(t *testing.T) {
	matchups := []matchup{
		{
			ID:     900001,
			Parent: &parentRef{ID: 1000},
			Special: &special{
				Description: "Luka Doncic (Points)",
			},
			Participants: []participant{
				{ID: 11, Name: "Over"},
				{ID: 12, Name: "Under"},
			},
		},
		{
			// Unsupported category, no prices should be requested for it alone.
			ID:     900002,
			Parent: &parentRef{ID: 1000},
			Special: &special{
				Description: "Luka Doncic (Double Double)",
			},
			Participants: []participant{
				{ID: 21, Name: "Yes"},
				{ID: 22, Name: "No"},
			},
		},
		{
			// Plain game matchup, not a special.
			ID: 1000,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		switch r.URL.Path {
		case "/leagues/487/matchups":
			json.NewEncoder(w).Encode(matchups)
		case "/matchups/900001/markets/straight":
			json.NewEncoder(w).Encode([]priceMarket{{
				Prices: []price{
					{ParticipantID: 11, Price: -115, Points: 29.5},
					{ParticipantID: 12, Price: -105, Points: 29.5},
					{ParticipantID: 999, Price: -110, Points: 1.5}, // unknown participant
				},
			}})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	lines, err := NewClient(srv.URL, "test-key", testLogger()).Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	l := lines[0]
	if l.Source != domain.SourcePinnacle || l.Player != "Luka Doncic" || l.Stat != domain.StatPoints || l.Line != 29.5 {
		t.Errorf("line identity = %+v", l)
	}
	wantOver := 1 + 100.0/115.0
	wantUnder := 1 + 100.0/105.0
	if math.Abs(l.OverDecimal-wantOver) > 1e-12 || math.Abs(l.UnderDecimal-wantUnder) > 1e-12 {
		t.Errorf("odds = %v/%v, want %v/%v", l.OverDecimal, l.UnderDecimal, wantOver, wantUnder)
	}
}

func TestLinesPartialPriceFailures(t *testing.T) {
	matchups := []matchup{
		{
			ID: 1, Parent: &parentRef{ID: 10}, Special: &special{Description: "Player A (Points)"},
			Participants: []participant{{ID: 11, Name: "Over"}, {ID: 12, Name: "Under"}},
		},
		{
			ID: 2, Parent: &parentRef{ID: 10}, Special: &special{Description: "Player B (Rebounds)"},
			Participants: []participant{{ID: 21, Name: "Over"}, {ID: 22, Name: "Under"}},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/leagues/487/matchups":
			json.NewEncoder(w).Encode(matchups)
		case "/matchups/1/markets/straight":
			w.WriteHeader(http.StatusInternalServerError)
		case "/matchups/2/markets/straight":
			json.NewEncoder(w).Encode([]priceMarket{{
				Prices: []price{
					{ParticipantID: 21, Price: 120, Points: 9.5},
					{ParticipantID: 22, Price: -150, Points: 9.5},
				},
			}})
		}
	}))
	defer srv.Close()

	lines, err := NewClient(srv.URL, "", testLogger()).Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Player != "Player B" {
		t.Errorf("lines = %+v, want only Player B", lines)
	}
}

func TestLinesAllPriceFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/leagues/487/matchups" {
			json.NewEncoder(w).Encode([]matchup{{
				ID: 1, Parent: &parentRef{ID: 10}, Special: &special{Description: "Player A (Points)"},
				Participants: []participant{{ID: 11, Name: "Over"}},
			}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "", testLogger()).Lines(context.Background()); err == nil {
		t.Fatal("Lines err = nil, want failure when every price fetch fails")
	}
}

func TestLinesNoProps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]matchup{{ID: 1000}})
	}))
	defer srv.Close()

	lines, err := NewClient(srv.URL, "", testLogger()).Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("got %d lines, want 0", len(lines))
	}
}
