package domain

import "context"

// OrderAction is the direction of an order.
type OrderAction string

const (
	ActionBuy  OrderAction = "buy"
	ActionSell OrderAction = "sell"
)

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderLimit  OrderType = "limit"
	OrderMarket OrderType = "market"
)

// OrderRequest is a fully specified order to submit to the exchange.
// PriceCents is the limit price for the chosen side.
type OrderRequest struct {
	Ticker     string
	Side       Side
	Action     OrderAction
	Count      int
	PriceCents int
	Type       OrderType
}

// CostCents is the maximum cash the request commits if fully filled.
func (r OrderRequest) CostCents() int {
	return r.Count * r.PriceCents
}

// OrderResult reports the exchange's answer to a submitted order.
type OrderResult struct {
	Accepted bool
	OrderID  string
	Status   string
	Reason   string
}

// OrderPlacer submits orders to an exchange.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}
