package oddsmath

import (
	"errors"
	"math"
	"testing"

	"github.com/calebwren/propbot/internal/domain"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american float64
		want     float64
		wantErr  bool
	}{
		{150, 2.50, false},
		{-120, 1 + 100.0/120.0, false},
		{100, 2.00, false},
		{-100, 2.00, false},
		{250, 3.50, false},
		{-250, 1.40, false},
		{0, 0, true},
		{50, 0, true},
		{-99, 0, true},
		{math.NaN(), 0, true},
		{math.Inf(-1), 0, true},
	}

	for _, tt := range tests {
		got, err := AmericanToDecimal(tt.american)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrMalformedOdds) {
				t.Fatalf("AmericanToDecimal(%v) err = %v, want ErrMalformedOdds", tt.american, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("AmericanToDecimal(%v) err = %v", tt.american, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("AmericanToDecimal(%v) = %v, want %v", tt.american, got, tt.want)
		}
	}
}
