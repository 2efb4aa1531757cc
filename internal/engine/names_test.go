package engine

import "testing"

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Luka Dončić", "luka doncic"},
		{"NIKOLA JOKIĆ", "nikola jokic"},
		{"Kristaps Porziņģis", "kristaps porzingis"},
		{"  LeBron   James ", "lebron james"},
		{"Jayson Tatum", "jayson tatum"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FoldName(tt.in); got != tt.want {
			t.Errorf("FoldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
