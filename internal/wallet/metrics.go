package wallet

import (
	"sort"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// Stats is a point-in-time snapshot of wallet performance.
type Stats struct {
	Balance        float64
	InitialBalance float64
	UnrealizedPnL  float64
	RealizedPnL    float64
	TotalPnL       float64
	TotalReturnPct float64
	OpenPositions  int
	TradeCount     int // buys executed
	WinRate        float64
}

// Balance returns the current virtual USDC balance.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// UnrealizedPnL sums the mark-to-market P&L of all open positions.
func (w *Wallet) UnrealizedPnL() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.unrealizedLocked()
}

func (w *Wallet) unrealizedLocked() float64 {
	var total float64
	for _, p := range w.positions {
		total += p.PnL
	}
	return total
}

// RealizedPnL returns the accumulated P&L of closed positions.
func (w *Wallet) RealizedPnL() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.realized
}

// TotalPnL is realized plus unrealized P&L.
func (w *Wallet) TotalPnL() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.realized + w.unrealizedLocked()
}

// OpenPositions returns a copy of the open position set, ordered by key for
// stable output. Callers must not retain the pointers across a suspension
// point — they reference live wallet state.
func (w *Wallet) OpenPositions() []*domain.Position {
	w.mu.Lock()
	defer w.mu.Unlock()

	keys := make([]string, 0, len(w.positions))
	for k := range w.positions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*domain.Position, 0, len(keys))
	for _, k := range keys {
		out = append(out, w.positions[k])
	}
	return out
}

// RecentTrades returns up to limit trades, newest first.
func (w *Wallet) RecentTrades(limit int) []domain.TradeRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.trades)
	if limit > n {
		limit = n
	}
	out := make([]domain.TradeRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, w.trades[i])
	}
	return out
}

// GetStats returns the full performance snapshot.
func (w *Wallet) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	unrealized := w.unrealizedLocked()
	total := w.realized + unrealized

	returnPct := 0.0
	if w.initial > 0 {
		returnPct = total / w.initial * 100
	}

	buys := 0
	for _, t := range w.trades {
		if t.Side == domain.SideBuy {
			buys++
		}
	}

	return Stats{
		Balance:        w.balance,
		InitialBalance: w.initial,
		UnrealizedPnL:  unrealized,
		RealizedPnL:    w.realized,
		TotalPnL:       total,
		TotalReturnPct: returnPct,
		OpenPositions:  len(w.positions),
		TradeCount:     buys,
		WinRate:        domain.WinRate(w.trades),
	}
}
