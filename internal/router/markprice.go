package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// PositionBook is the open-position ledger the loop marks alongside the
// wallet. Satisfied by *portfolio.Portfolio.
type PositionBook interface {
	OpenPositions() []*domain.Position
	UpdatePrice(positionKey string, price float64)
}

// MarkLoop periodically refreshes the mark price of every open position from
// the price oracle, so unrealized P&L tracks the live market. It marks both
// the portfolio ledger and, in paper mode, the virtual wallet.
//
// A failed lookup for one token never aborts the batch — partial updates are
// expected. Stop is idempotent and never interrupts a wallet mutation: the
// loop only observes cancellation between fetches.
type MarkLoop struct {
	router   *Router
	book     PositionBook
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMarkLoop creates a mark-to-market refresher. book may be nil.
func NewMarkLoop(r *Router, book PositionBook, interval time.Duration) *MarkLoop {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &MarkLoop{router: r, book: book, interval: interval}
}

// Start launches the background refresh loop. Starting an already running
// loop is a no-op.
func (m *MarkLoop) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.run(ctx)
	slog.Info("mark-to-market loop started", "interval", m.interval)
}

// Stop cancels the loop and waits for the in-flight iteration to finish.
// Stopping an already stopped loop is a no-op.
func (m *MarkLoop) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("mark-to-market loop stopped")
}

func (m *MarkLoop) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refreshOnce(ctx)
		}
	}
}

// refreshOnce fetches the current buy-side price for every open position's
// token and applies the batch to the portfolio and the wallet.
func (m *MarkLoop) refreshOnce(ctx context.Context) {
	var positions []*domain.Position
	if m.book != nil {
		positions = m.book.OpenPositions()
	} else if w := m.router.Wallet(); w != nil {
		positions = w.OpenPositions()
	}
	if len(positions) == 0 {
		return
	}

	prices := make(map[string]float64, len(positions))
	for _, pos := range positions {
		if _, ok := prices[pos.TokenID]; ok {
			continue
		}
		price, err := m.router.oracle.GetPrice(ctx, pos.TokenID, domain.SideBuy)
		if err != nil {
			slog.Debug("mark price fetch failed", "token", pos.TokenID, "err", err)
			continue
		}
		if price > 0 {
			prices[pos.TokenID] = price
		}
	}
	if len(prices) == 0 {
		return
	}

	if m.book != nil {
		for _, pos := range positions {
			if price, ok := prices[pos.TokenID]; ok {
				m.book.UpdatePrice(pos.Key(), price)
			}
		}
	}
	if w := m.router.Wallet(); w != nil {
		w.UpdatePrices(prices)
	}
}
