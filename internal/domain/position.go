package domain

import (
	"fmt"
	"time"
)

// PositionStatus represents the lifecycle of a position.
type PositionStatus string

const (
	PositionOpen    PositionStatus = "open"
	PositionSelling PositionStatus = "selling"
	PositionClosed  PositionStatus = "closed"
	PositionSettled PositionStatus = "settled"
)

// Outcome is one of the two sides of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Position is a holding in one outcome token of a binary market.
// Held identically by the virtual wallet and the live portfolio.
//
// Invariant after every mutation: TotalCost == Shares * EntryPrice.
type Position struct {
	ConditionID  string         `json:"condition_id"`
	TokenID      string         `json:"token_id"`
	MarketName   string         `json:"market_name"`
	Outcome      Outcome        `json:"outcome"`
	Shares       float64        `json:"shares"`
	EntryPrice   float64        `json:"entry_price"` // volume-weighted average
	TotalCost    float64        `json:"total_cost"`
	Strategy     string         `json:"strategy"` // momentum/copy/mm/sniper
	Status       PositionStatus `json:"status"`
	CurrentPrice float64        `json:"current_price"`
	PnL          float64        `json:"pnl"` // unrealized while open
	PnLPct       float64        `json:"pnl_pct"`
	OpenedAt     time.Time      `json:"opened_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ClosedAt     *time.Time     `json:"closed_at,omitempty"`
	ClosePrice   float64        `json:"close_price,omitempty"`
}

// PositionKey builds the composite key identifying an open position.
func PositionKey(conditionID, tokenID string) string {
	return fmt.Sprintf("%s-%s", conditionID, tokenID)
}

// Key returns the position's composite identity.
func (p *Position) Key() string {
	return PositionKey(p.ConditionID, p.TokenID)
}

// MarkPrice updates the unrealized P&L against a new mark price.
// Cost basis is untouched.
func (p *Position) MarkPrice(price float64, now time.Time) {
	p.CurrentPrice = price
	p.PnL = (price - p.EntryPrice) * p.Shares
	if p.EntryPrice > 0 {
		p.PnLPct = (price - p.EntryPrice) / p.EntryPrice * 100
	}
	p.UpdatedAt = now
}

// AddShares merges an additional buy into the position using
// volume-weighted averaging of the entry price.
func (p *Position) AddShares(shares, price float64, now time.Time) {
	cost := shares * price
	totalShares := p.Shares + shares
	avg := (p.TotalCost + cost) / totalShares
	p.Shares = totalShares
	p.EntryPrice = avg
	p.TotalCost = totalShares * avg
	p.UpdatedAt = now
}

// Close marks the position closed at the given price and returns realized P&L.
func (p *Position) Close(price float64, now time.Time) float64 {
	p.ClosePrice = price
	p.PnL = (price - p.EntryPrice) * p.Shares
	p.Status = PositionClosed
	p.ClosedAt = &now
	p.UpdatedAt = now
	return p.PnL
}
