// Package wallet implements the paper-trading virtual wallet: a simulated
// USDC account whose trades execute at real observed venue prices.
//
// The wallet is the paper-trading state machine. All mutation goes through
// ExecuteBuy / ExecuteSell; the in-memory mutation and the synchronous
// persistence write form one critical section under the wallet mutex, so two
// strategies racing on the same position key can never interleave a
// read-modify-write. Prices are resolved by the caller before entering —
// the wallet never fetches a price itself.
package wallet

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
)

const (
	// DefaultStartingBalance is the virtual USDC balance for a fresh wallet.
	DefaultStartingBalance = 50.0

	// minTradeUSDC is the dust threshold below which buys are rejected.
	minTradeUSDC = 0.01

	// maxStoredTrades bounds the trade list inside the persisted document.
	// The SQLite archive keeps the full history.
	maxStoredTrades = 500
)

// Wallet is the virtual trading wallet. One instance per process, injected
// into the router; construct with New.
type Wallet struct {
	mu        sync.Mutex
	balance   float64
	initial   float64
	realized  float64
	positions map[string]*domain.Position
	trades    []domain.TradeRecord
	pending   []domain.PendingLimit

	store   ports.StateStore
	archive ports.TradeArchive // optional; nil disables archiving
	now     func() time.Time
}

// New creates a wallet, restoring persisted state if a readable document
// exists. An unreadable or missing document starts fresh at startingBalance —
// load never fails.
func New(store ports.StateStore, archive ports.TradeArchive, startingBalance float64) *Wallet {
	if startingBalance <= 0 {
		startingBalance = DefaultStartingBalance
	}
	w := &Wallet{
		balance:   startingBalance,
		initial:   startingBalance,
		positions: make(map[string]*domain.Position),
		store:     store,
		archive:   archive,
		now:       time.Now,
	}

	if doc, ok := store.LoadWallet(); ok {
		// A document missing balance entirely (older schema, or empty file
		// that still parsed) keeps the configured default.
		if doc.Balance != 0 || len(doc.Positions) > 0 || len(doc.Trades) > 0 {
			w.balance = doc.Balance
		}
		if doc.InitialBalance > 0 {
			w.initial = doc.InitialBalance
		}
		w.realized = doc.RealizedPnL
		for k, p := range doc.Positions {
			if p != nil {
				w.positions[k] = p
			}
		}
		w.trades = doc.Trades
		w.pending = doc.PendingLimits
		slog.Info("paper wallet loaded",
			"balance", w.balance,
			"open_positions", len(w.positions),
			"trades", len(w.trades),
		)
	}
	return w
}

// BuyOrder carries everything ExecuteBuy needs. Price must be a real
// observed ask price, already resolved by the caller.
type BuyOrder struct {
	ConditionID string
	TokenID     string
	MarketName  string
	Outcome     domain.Outcome
	Shares      float64
	Price       float64
	Strategy    string
	TradeID     string
}

// CanBuy reports whether the wallet can afford a purchase of the given
// notional. Pure predicate, no side effects.
func (w *Wallet) CanBuy(notional float64) (bool, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canBuyLocked(notional)
}

func (w *Wallet) canBuyLocked(notional float64) (bool, string) {
	if notional > w.balance {
		return false, "insufficient balance"
	}
	if notional < minTradeUSDC {
		return false, "amount too small"
	}
	return true, ""
}

// ExecuteBuy executes a virtual buy at the given real market price.
// Returns nil on rejection — an expected outcome, logged at warn, with no
// state mutated. On success the debit, position merge-or-create and trade
// record are applied and persisted before returning.
func (w *Wallet) ExecuteBuy(ctx context.Context, o BuyOrder) *domain.Position {
	if o.Price <= 0 || o.Shares <= 0 {
		slog.Warn("paper buy rejected", "reason", "invalid price or shares",
			"price", o.Price, "shares", o.Shares)
		return nil
	}
	cost := o.Shares * o.Price

	w.mu.Lock()
	defer w.mu.Unlock()

	if ok, reason := w.canBuyLocked(cost); !ok {
		slog.Warn("paper buy rejected", "reason", reason,
			"cost", cost, "balance", w.balance, "market", o.MarketName)
		return nil
	}

	now := w.now().UTC()
	balanceBefore := w.balance
	w.balance -= cost

	key := domain.PositionKey(o.ConditionID, o.TokenID)
	pos, exists := w.positions[key]
	if exists {
		pos.AddShares(o.Shares, o.Price, now)
	} else {
		pos = &domain.Position{
			ConditionID:  o.ConditionID,
			TokenID:      o.TokenID,
			MarketName:   o.MarketName,
			Outcome:      o.Outcome,
			Shares:       o.Shares,
			EntryPrice:   o.Price,
			TotalCost:    cost,
			Strategy:     o.Strategy,
			Status:       domain.PositionOpen,
			CurrentPrice: o.Price,
			OpenedAt:     now,
			UpdatedAt:    now,
		}
		w.positions[key] = pos
	}

	rec := domain.TradeRecord{
		TradeID:       o.TradeID,
		Strategy:      o.Strategy,
		ConditionID:   o.ConditionID,
		TokenID:       o.TokenID,
		MarketName:    o.MarketName,
		Side:          domain.SideBuy,
		Shares:        o.Shares,
		Price:         o.Price,
		Total:         cost,
		BalanceBefore: balanceBefore,
		BalanceAfter:  w.balance,
		Timestamp:     now,
	}
	w.appendTradeLocked(ctx, rec)
	w.persistLocked()

	slog.Info("[PAPER] BUY",
		"market", o.MarketName,
		"shares", o.Shares,
		"price", o.Price,
		"cost", cost,
		"balance", w.balance,
	)
	return pos
}

// ExecuteSell executes a virtual sell of the full position at the given real
// market price and returns the realized P&L.
//
// An unknown position key is a no-op returning 0, logged at warn but not an
// error: independent monitors can emit duplicate close signals and the
// second must not corrupt state.
func (w *Wallet) ExecuteSell(ctx context.Context, positionKey string, price float64, strategy, tradeID string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, ok := w.positions[positionKey]
	if !ok {
		slog.Warn("paper sell: position not found", "position", positionKey)
		return 0
	}

	now := w.now().UTC()
	balanceBefore := w.balance
	proceeds := pos.Shares * price
	realized := pos.Close(price, now)

	w.balance += proceeds
	w.realized += realized
	delete(w.positions, positionKey)

	rec := domain.TradeRecord{
		TradeID:       tradeID,
		Strategy:      strategy,
		ConditionID:   pos.ConditionID,
		TokenID:       pos.TokenID,
		MarketName:    pos.MarketName,
		Side:          domain.SideSell,
		Shares:        pos.Shares,
		Price:         price,
		Total:         proceeds,
		BalanceBefore: balanceBefore,
		BalanceAfter:  w.balance,
		Timestamp:     now,
	}
	w.appendTradeLocked(ctx, rec)
	w.persistLocked()

	slog.Info("[PAPER] SELL",
		"market", pos.MarketName,
		"price", price,
		"realized_pnl", realized,
		"balance", w.balance,
	)
	return realized
}

// UpdatePrices marks every open position whose token appears in the mapping.
// Does not persist — mark-to-market runs at high frequency and the marks are
// reproducible from the oracle.
func (w *Wallet) UpdatePrices(prices map[string]float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UTC()
	for _, pos := range w.positions {
		if price, ok := prices[pos.TokenID]; ok && price > 0 {
			pos.MarkPrice(price, now)
		}
	}
}

// AddPendingLimit records a paper-mode limit order. Bookkeeping only: no
// fill simulation is attempted.
func (w *Wallet) AddPendingLimit(limit domain.PendingLimit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, limit)
	w.persistLocked()
}

// Reset wipes all positions, trades and realized P&L and restarts the wallet
// at newBalance. Destructive and irreversible — explicit operator action only.
func (w *Wallet) Reset(newBalance float64) {
	if newBalance <= 0 {
		newBalance = DefaultStartingBalance
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance = newBalance
	w.initial = newBalance
	w.realized = 0
	w.positions = make(map[string]*domain.Position)
	w.trades = nil
	w.pending = nil
	w.persistLocked()

	slog.Info("paper wallet reset", "balance", newBalance)
}

// appendTradeLocked appends to the bounded in-memory list and mirrors the
// record into the unbounded archive. Archive failures are logged and
// swallowed: the persisted document is the durability unit for wallet state.
func (w *Wallet) appendTradeLocked(ctx context.Context, rec domain.TradeRecord) {
	w.trades = append(w.trades, rec)
	if len(w.trades) > maxStoredTrades {
		w.trades = w.trades[len(w.trades)-maxStoredTrades:]
	}
	if w.archive != nil {
		if err := w.archive.ArchiveTrade(ctx, rec); err != nil {
			slog.Warn("trade archive write failed", "err", err, "trade", rec.TradeID)
		}
	}
}

// persistLocked rewrites the whole wallet document. Called with the mutex
// held so disk state never lags a mutation visible to another goroutine.
func (w *Wallet) persistLocked() {
	doc := ports.WalletDocument{
		Balance:        w.balance,
		InitialBalance: w.initial,
		RealizedPnL:    w.realized,
		Positions:      w.positions,
		Trades:         w.trades,
		PendingLimits:  w.pending,
		LastUpdated:    w.now().UTC().Format(time.RFC3339),
	}
	if err := w.store.SaveWallet(doc); err != nil {
		slog.Error("paper wallet save failed", "err", err)
	}
}
