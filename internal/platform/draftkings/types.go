package draftkings

// payload is the subset of the markets response the bot reads.
type payload struct {
	Markets    []market    `json:"markets"`
	Selections []selection `json:"selections"`
}

type market struct {
	ID string `json:"id"`
}

type selection struct {
	MarketID     string        `json:"marketId"`
	Label        string        `json:"label"` // "Over" or "Under"
	Points       float64       `json:"points"`
	TrueOdds     float64       `json:"trueOdds"`
	DisplayOdds  displayOdds   `json:"displayOdds"`
	Participants []participant `json:"participants"`
}

type displayOdds struct {
	American string `json:"american"`
}

type participant struct {
	Name string `json:"name"`
}
