// Package portfolio is the strategy-facing position ledger: open positions,
// trade history, daily and lifetime P&L. The risk gate reads its aggregates
// before every trade intent.
//
// Unlike the virtual wallet it carries no balance constraint — in live mode
// the venue account is the balance of record; in paper mode the wallet is.
package portfolio

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
)

// maxStoredTrades bounds the trade list in the persisted document.
const maxStoredTrades = 1000

// Portfolio tracks positions and trades with JSON persistence.
type Portfolio struct {
	mu        sync.Mutex
	positions map[string]*domain.Position
	trades    []domain.TradeRecord
	dailyPnL  float64
	totalPnL  float64

	store   ports.StateStore
	archive ports.TradeArchive
	now     func() time.Time
}

// New creates a portfolio, restoring persisted state if available.
func New(store ports.StateStore, archive ports.TradeArchive) *Portfolio {
	p := &Portfolio{
		positions: make(map[string]*domain.Position),
		store:     store,
		archive:   archive,
		now:       time.Now,
	}
	if doc, ok := store.LoadPortfolio(); ok {
		for k, pos := range doc.Positions {
			if pos != nil {
				p.positions[k] = pos
			}
		}
		p.trades = doc.Trades
		p.dailyPnL = doc.DailyPnL
		p.totalPnL = doc.TotalPnL
		slog.Info("portfolio loaded",
			"positions", len(p.positions), "trades", len(p.trades))
	}
	return p
}

// AddPosition registers a new open position (or replaces an existing entry
// for the same key, e.g. after an averaged buy) and persists.
func (p *Portfolio) AddPosition(pos *domain.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.positions[pos.Key()] = pos
	p.persistLocked()

	slog.Info("position added",
		"market", pos.MarketName,
		"outcome", pos.Outcome,
		"shares", pos.Shares,
		"entry_price", pos.EntryPrice,
	)
}

// UpdatePrice marks an open position to a new price.
func (p *Portfolio) UpdatePrice(positionKey string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos, ok := p.positions[positionKey]; ok {
		pos.MarkPrice(price, p.now().UTC())
	}
}

// SetStatus updates a position's lifecycle status (e.g. open → selling while
// an exit order is pending) and persists.
func (p *Portfolio) SetStatus(positionKey string, status domain.PositionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos, ok := p.positions[positionKey]; ok {
		pos.Status = status
		pos.UpdatedAt = p.now().UTC()
		p.persistLocked()
	}
}

// ClosePosition removes a position at the given close price and returns its
// realized P&L, accumulated into the daily and lifetime totals. The realized
// amount is persisted before the position leaves the open set. Unknown keys
// return 0 — duplicate close signals are tolerated.
func (p *Portfolio) ClosePosition(positionKey string, closePrice float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos, ok := p.positions[positionKey]
	if !ok {
		slog.Warn("close: position not found", "position", positionKey)
		return 0
	}

	realized := pos.Close(closePrice, p.now().UTC())
	p.dailyPnL += realized
	p.totalPnL += realized
	delete(p.positions, positionKey)
	p.persistLocked()

	slog.Info("position closed",
		"market", pos.MarketName, "price", closePrice, "realized_pnl", realized)
	return realized
}

// RecordTrade appends a trade to the bounded history and the archive.
func (p *Portfolio) RecordTrade(ctx context.Context, rec domain.TradeRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.trades = append(p.trades, rec)
	if len(p.trades) > maxStoredTrades {
		p.trades = p.trades[len(p.trades)-maxStoredTrades:]
	}
	if p.archive != nil {
		if err := p.archive.ArchiveTrade(ctx, rec); err != nil {
			slog.Warn("trade archive write failed", "err", err, "trade", rec.TradeID)
		}
	}
	p.persistLocked()
}

// ResetDailyPnL zeroes the daily counter. Explicit operator/cron action;
// also re-arms the daily loss kill-switch.
func (p *Portfolio) ResetDailyPnL() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dailyPnL = 0
	p.persistLocked()
}

// OpenPositionCount returns the number of open positions.
func (p *Portfolio) OpenPositionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, pos := range p.positions {
		if pos.Status == domain.PositionOpen {
			n++
		}
	}
	return n
}

// TotalInvested sums the cost basis across open positions.
func (p *Portfolio) TotalInvested() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total float64
	for _, pos := range p.positions {
		if pos.Status == domain.PositionOpen {
			total += pos.TotalCost
		}
	}
	return total
}

// DailyPnL returns the running daily realized P&L.
func (p *Portfolio) DailyPnL() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dailyPnL
}

// TotalPnL returns the lifetime realized P&L.
func (p *Portfolio) TotalPnL() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPnL
}

// WinRate returns the percentage of winning sells over the trade history.
func (p *Portfolio) WinRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.WinRate(p.trades)
}

// Stats is a point-in-time snapshot of the ledger's aggregates.
type Stats struct {
	OpenPositions int
	TotalInvested float64
	DailyPnL      float64
	TotalPnL      float64
	WinRate       float64
}

// GetStats returns the ledger snapshot used by the report.
func (p *Portfolio) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	open, invested := 0, 0.0
	for _, pos := range p.positions {
		if pos.Status == domain.PositionOpen {
			open++
			invested += pos.TotalCost
		}
	}
	return Stats{
		OpenPositions: open,
		TotalInvested: invested,
		DailyPnL:      p.dailyPnL,
		TotalPnL:      p.totalPnL,
		WinRate:       domain.WinRate(p.trades),
	}
}

// OpenPositions returns the open positions ordered by key.
func (p *Portfolio) OpenPositions() []*domain.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := make([]string, 0, len(p.positions))
	for k, pos := range p.positions {
		if pos.Status == domain.PositionOpen {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]*domain.Position, 0, len(keys))
	for _, k := range keys {
		out = append(out, p.positions[k])
	}
	return out
}

// PositionsByStrategy returns open positions owned by the given strategy.
func (p *Portfolio) PositionsByStrategy(strategy string) []*domain.Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*domain.Position
	for _, pos := range p.positions {
		if pos.Strategy == strategy {
			out = append(out, pos)
		}
	}
	return out
}

// RecentTrades returns up to limit trades, newest first.
func (p *Portfolio) RecentTrades(limit int) []domain.TradeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.trades)
	if limit > n {
		limit = n
	}
	out := make([]domain.TradeRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, p.trades[i])
	}
	return out
}

func (p *Portfolio) persistLocked() {
	doc := ports.PortfolioDocument{
		Positions: p.positions,
		Trades:    p.trades,
		DailyPnL:  p.dailyPnL,
		TotalPnL:  p.totalPnL,
	}
	if err := p.store.SavePortfolio(doc); err != nil {
		slog.Error("portfolio save failed", "err", err)
	}
}
