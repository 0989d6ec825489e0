package domain

import "time"

// Side of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord is an immutable record of one executed trade.
// Appended to the wallet/portfolio documents (bounded retention) and to the
// SQLite archive (unbounded) — never mutated after creation.
type TradeRecord struct {
	TradeID       string    `json:"trade_id"`
	Strategy      string    `json:"strategy"`
	ConditionID   string    `json:"condition_id"`
	TokenID       string    `json:"token_id"`
	MarketName    string    `json:"market_name"`
	Side          Side      `json:"side"`
	Shares        float64   `json:"shares"`
	Price         float64   `json:"price"` // real observed execution price
	Total         float64   `json:"total"` // shares * price
	BalanceBefore float64   `json:"balance_before"`
	BalanceAfter  float64   `json:"balance_after"`
	Timestamp     time.Time `json:"timestamp"`
}

// WinRate computes the percentage of sell trades executed above the
// volume-weighted average buy price recorded for the same market name.
//
// This is an approximation: individual buy-to-sell lot lineage is not
// tracked, so a sell is matched against all historical buys in that market,
// not the specific lots it closed. Good enough as a performance signal; not
// exact per-lot accounting.
func WinRate(trades []TradeRecord) float64 {
	type buyAgg struct {
		cost, shares float64
	}
	buysByMarket := make(map[string]buyAgg)
	for _, t := range trades {
		if t.Side != SideBuy {
			continue
		}
		agg := buysByMarket[t.MarketName]
		agg.cost += t.Total
		agg.shares += t.Shares
		buysByMarket[t.MarketName] = agg
	}

	sells, wins := 0, 0
	for _, t := range trades {
		if t.Side != SideSell {
			continue
		}
		sells++
		agg, ok := buysByMarket[t.MarketName]
		if !ok || agg.shares <= 0 {
			continue
		}
		if t.Price > agg.cost/agg.shares {
			wins++
		}
	}
	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells) * 100
}

// Trade is a venue trade observed on the live feed (copy-trading input).
type Trade struct {
	ID          string
	Wallet      string // trader address
	ConditionID string
	TokenID     string
	MarketName  string
	Outcome     Outcome
	Side        Side
	Price       float64
	Size        float64 // USDC notional
	Timestamp   time.Time
}
