package kalshi

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// Market is one market row as returned by the REST API. Prices are integer
// cents in [1, 99]; zero means no resting quote on that side.
type Market struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Status       string `json:"status"` // "open", "closed", "settled"
	YesBid       int    `json:"yes_bid"`
	YesAsk       int    `json:"yes_ask"`
	NoBid        int    `json:"no_bid"`
	NoAsk        int    `json:"no_ask"`
	LastPrice    int    `json:"last_price"`
	Volume       int64  `json:"volume"`
	OpenInterest int64  `json:"open_interest"`
	CloseTime    string `json:"close_time"`
}

// Order is the request body for POST /portfolio/orders. ClientOrderID makes
// retried submissions idempotent on the exchange side.
type Order struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Action        string `json:"action"` // "buy" or "sell"
	Side          string `json:"side"`   // "yes" or "no"
	Type          string `json:"type"`   // "market" or "limit"
	Count         int    `json:"count"`
	YesPrice      *int   `json:"yes_price,omitempty"` // limit price in cents, yes side
	NoPrice       *int   `json:"no_price,omitempty"`  // limit price in cents, no side
	BuyMaxCost    *int   `json:"buy_max_cost,omitempty"`
}

// OrderResponse is the API response after placing an order.
type OrderResponse struct {
	Order struct {
		OrderID        string `json:"order_id"`
		Ticker         string `json:"ticker"`
		Status         string `json:"status"` // "resting", "canceled", "executed", "pending"
		Action         string `json:"action"`
		Side           string `json:"side"`
		Type           string `json:"type"`
		YesPrice       int    `json:"yes_price"`
		NoPrice        int    `json:"no_price"`
		PlacedTime     string `json:"placed_time"`
		RemainingCount int    `json:"remaining_count"`
		TakerFillCount int    `json:"taker_fill_count"`
		TakerFillCost  int    `json:"taker_fill_cost"`
	} `json:"order"`
}

// ErrorResponse is a Kalshi API error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
