package pinnacle

// matchup is one row of the league matchups feed. Player props are child
// matchups: Parent set, Special carrying a "Player (Category)" description,
// and Over/Under participants that price requests join against.
type matchup struct {
	ID           int           `json:"id"`
	Parent       *parentRef    `json:"parent"`
	Special      *special      `json:"special"`
	Participants []participant `json:"participants"`
}

type parentRef struct {
	ID int `json:"id"`
}

type special struct {
	Description string `json:"description"`
}

type participant struct {
	ID   int    `json:"id"`
	Name string `json:"name"` // "Over" or "Under" on prop matchups
}

// priceMarket is one straight market with its participant prices.
type priceMarket struct {
	Prices []price `json:"prices"`
}

type price struct {
	ParticipantID int     `json:"participantId"`
	Price         float64 `json:"price"` // American odds
	Points        float64 `json:"points"`
}
