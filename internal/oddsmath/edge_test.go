package oddsmath

import (
	"math"
	"testing"
)

func TestYesEdge(t *testing.T) {
	fair := 1.95 / 3.85 // 1.90/1.95 book, vig removed
	got := YesEdge(fair, 45)
	want := fair*100 - 45
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("YesEdge = %v, want %v", got, want)
	}
	if got < 5.64 || got > 5.66 {
		t.Errorf("YesEdge = %v, want about 5.65", got)
	}

	if got := YesEdge(0.40, 45); got != -5 {
		t.Errorf("YesEdge(0.40, 45) = %v, want -5", got)
	}
}

func TestNoEdge(t *testing.T) {
	if got := NoEdge(0.60, 35); math.Abs(got-5) > 1e-12 {
		t.Errorf("NoEdge(0.60, 35) = %v, want 5", got)
	}
	if got := NoEdge(0.60, 45); math.Abs(got+5) > 1e-12 {
		t.Errorf("NoEdge(0.60, 45) = %v, want -5", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{0.52}); got != 0.52 {
		t.Errorf("Mean(single) = %v, want 0.52", got)
	}
	if got := Mean([]float64{0.50, 0.54}); math.Abs(got-0.52) > 1e-12 {
		t.Errorf("Mean(pair) = %v, want 0.52", got)
	}
}
