package oddsmath

import "testing"

func TestTakerFeeCents(t *testing.T) {
	tests := []struct {
		name       string
		priceCents int
		count      int
		want       int
	}{
		{"midpoint small order", 50, 5, 1},
		{"midpoint full order", 50, 100, 2},
		{"longshot", 10, 100, 1},
		{"near certain", 97, 20, 1},
		{"zero count", 50, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TakerFeeCents(tt.priceCents, tt.count); got != tt.want {
				t.Errorf("TakerFeeCents(%d, %d) = %d, want %d", tt.priceCents, tt.count, got, tt.want)
			}
		})
	}
}

func TestMakerFeeCents(t *testing.T) {
	// Maker coefficient is a quarter of the taker coefficient.
	if got := MakerFeeCents(50, 100); got != 1 {
		t.Errorf("MakerFeeCents(50, 100) = %d, want 1", got)
	}
}

func TestFeeCentsExtremePrices(t *testing.T) {
	// P*(1-P) vanishes at both ends of the price range.
	if got := TakerFeeCents(0, 1000); got != 0 {
		t.Errorf("TakerFeeCents(0, 1000) = %d, want 0", got)
	}
	if got := TakerFeeCents(100, 1000); got != 0 {
		t.Errorf("TakerFeeCents(100, 1000) = %d, want 0", got)
	}
}
