package domain

import "time"

// ExecutionStatus tags how an order was (or wasn't) executed.
type ExecutionStatus string

const (
	ExecDryRun       ExecutionStatus = "DRY_RUN"
	ExecPaperFilled  ExecutionStatus = "PAPER_FILLED"
	ExecPaperPending ExecutionStatus = "PAPER_PENDING"
	ExecLive         ExecutionStatus = "LIVE"
)

// ExecutionResult is what the order router returns to a strategy.
// A nil result means the order could not be executed (no price, venue
// unavailable, wallet rejection) — the strategy decides whether to retry
// next cycle.
type ExecutionResult struct {
	Status      ExecutionStatus
	TradeID     string
	OrderID     string
	Price       float64 // real observed execution price (0 for DRY_RUN)
	Shares      float64
	Cost        float64
	RealizedPnL float64 // sells only
	Balance     float64 // wallet balance after, paper mode only
	Paper       bool
}

// OrderReceipt is the venue's acknowledgment of a live order.
// Absence of a receipt means "could not confirm", not a guaranteed failure.
type OrderReceipt struct {
	OrderID string
	Status  string
	Price   float64
	Size    float64
}

// PendingLimit is a paper-mode limit order. It is a bookkeeping artifact
// only: no order-book matching or fill probability is simulated.
type PendingLimit struct {
	OrderID     string    `json:"order_id"`
	ConditionID string    `json:"condition_id"`
	TokenID     string    `json:"token_id"`
	MarketName  string    `json:"market_name"`
	Outcome     Outcome   `json:"outcome"`
	Side        Side      `json:"side"`
	Price       float64   `json:"price"`
	Shares      float64   `json:"shares"`
	Strategy    string    `json:"strategy"`
	PlacedAt    time.Time `json:"placed_at"`
}
