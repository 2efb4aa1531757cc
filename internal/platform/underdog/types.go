package underdog

// payload is the subset of the over_under_lines response the bot reads. The
// three collections are flat; appearance ids tie lines back to players.
type payload struct {
	Players        []player        `json:"players"`
	Appearances    []appearance    `json:"appearances"`
	OverUnderLines []overUnderLine `json:"over_under_lines"`
}

type player struct {
	ID         string `json:"id"`
	SportID    string `json:"sport_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	PositionID string `json:"position_id"`
	TeamID     string `json:"team_id"`
}

type appearance struct {
	ID         string `json:"id"`
	PlayerID   string `json:"player_id"`
	PositionID string `json:"position_id"`
	TeamID     string `json:"team_id"`
}

type overUnderLine struct {
	Status    string    `json:"status"`
	StatValue string    `json:"stat_value"`
	Options   []option  `json:"options"`
	OverUnder overUnder `json:"over_under"`
}

type option struct {
	Choice           string `json:"choice"` // "higher" or "lower"
	PayoutMultiplier string `json:"payout_multiplier"`
}

type overUnder struct {
	AppearanceStat appearanceStat `json:"appearance_stat"`
}

type appearanceStat struct {
	AppearanceID string `json:"appearance_id"`
	DisplayStat  string `json:"display_stat"`
}
