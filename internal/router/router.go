// Package router is the single entry point for order execution. Every trade
// intent — after passing the risk gate — is dispatched here, to one of three
// mutually exclusive modes:
//
//	log-only  simulate success, no state touched (safety rehearsal)
//	paper     execute against the virtual wallet at real observed prices
//	live      pass through to the venue's order interface
//
// The mode is fixed at construction; it cannot change mid-call.
package router

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/wallet"
)

// Router dispatches buy/sell/limit intents according to the trading mode.
type Router struct {
	mode     config.Mode
	wallet   *wallet.Wallet
	oracle   ports.PriceOracle
	venue    ports.VenueExecutor
	notifier ports.Notifier
}

// New creates a router. wallet may be nil outside paper mode; venue may be
// nil outside live mode.
func New(mode config.Mode, w *wallet.Wallet, oracle ports.PriceOracle, venue ports.VenueExecutor, notifier ports.Notifier) *Router {
	return &Router{
		mode:     mode,
		wallet:   w,
		oracle:   oracle,
		venue:    venue,
		notifier: notifier,
	}
}

// Mode returns the configured trading mode.
func (r *Router) Mode() config.Mode {
	return r.mode
}

// Wallet exposes the virtual wallet (nil outside paper mode).
func (r *Router) Wallet() *wallet.Wallet {
	return r.wallet
}

// BuyRequest is a buy intent from a strategy.
type BuyRequest struct {
	TokenID     string
	ConditionID string
	MarketName  string
	Outcome     domain.Outcome
	Notional    float64 // USDC to commit
	Strategy    string
}

// Buy executes a buy intent. Returns nil when the order could not be
// executed (no live price, wallet rejection, venue unavailable); the caller
// decides whether to retry next cycle — the router never retries placement.
func (r *Router) Buy(ctx context.Context, req BuyRequest) *domain.ExecutionResult {
	switch r.mode {
	case config.ModeLogOnly:
		slog.Info("[DRY RUN] BUY", "market", req.MarketName, "notional", req.Notional,
			"strategy", req.Strategy)
		return &domain.ExecutionResult{Status: domain.ExecDryRun}

	case config.ModePaper:
		return r.paperBuy(ctx, req)

	case config.ModeLive:
		receipt, err := r.venue.PlaceMarketOrder(ctx, req.TokenID, domain.SideBuy, req.Notional)
		if err != nil || receipt == nil {
			slog.Warn("live buy not confirmed", "market", req.MarketName, "err", err)
			return nil
		}
		return &domain.ExecutionResult{
			Status:  domain.ExecLive,
			OrderID: receipt.OrderID,
			Price:   receipt.Price,
			Shares:  receipt.Size,
			Cost:    req.Notional,
		}
	}
	return nil
}

// paperBuy executes a buy in the virtual wallet at the real current ask.
// The price is fetched before the wallet mutation so the wallet's critical
// section never suspends on I/O other than its own persistence write.
func (r *Router) paperBuy(ctx context.Context, req BuyRequest) *domain.ExecutionResult {
	price, err := r.oracle.GetPrice(ctx, req.TokenID, domain.SideBuy)
	if err != nil || price <= 0 {
		// A paper trade must never execute at a synthetic or stale price.
		slog.Warn("paper buy failed: no real price",
			"token", req.TokenID, "market", req.MarketName, "err", err)
		return nil
	}

	shares := req.Notional / price
	tradeID := newTradeID()

	pos := r.wallet.ExecuteBuy(ctx, wallet.BuyOrder{
		ConditionID: req.ConditionID,
		TokenID:     req.TokenID,
		MarketName:  req.MarketName,
		Outcome:     req.Outcome,
		Shares:      shares,
		Price:       price,
		Strategy:    req.Strategy,
		TradeID:     tradeID,
	})
	if pos == nil {
		return nil
	}

	res := &domain.ExecutionResult{
		Status:  domain.ExecPaperFilled,
		TradeID: tradeID,
		OrderID: "paper_" + shortID(req.TokenID),
		Price:   price,
		Shares:  shares,
		Cost:    req.Notional,
		Balance: r.wallet.Balance(),
		Paper:   true,
	}
	r.notifier.TradeOpened(pos, res)
	return res
}

// Sell executes a sell intent for the full position behind positionKey.
func (r *Router) Sell(ctx context.Context, positionKey, tokenID, marketName, strategy string) *domain.ExecutionResult {
	switch r.mode {
	case config.ModeLogOnly:
		slog.Info("[DRY RUN] SELL", "position", positionKey, "strategy", strategy)
		return &domain.ExecutionResult{Status: domain.ExecDryRun}

	case config.ModePaper:
		// SELL side = bid price.
		price, err := r.oracle.GetPrice(ctx, tokenID, domain.SideSell)
		if err != nil || price <= 0 {
			slog.Warn("paper sell failed: no real price",
				"token", tokenID, "position", positionKey, "err", err)
			return nil
		}

		tradeID := newTradeID()
		pnl := r.wallet.ExecuteSell(ctx, positionKey, price, strategy, tradeID)

		res := &domain.ExecutionResult{
			Status:      domain.ExecPaperFilled,
			TradeID:     tradeID,
			Price:       price,
			RealizedPnL: pnl,
			Balance:     r.wallet.Balance(),
			Paper:       true,
		}
		r.notifier.TradeClosed(marketName, strategy, price, pnl, true)
		return res

	case config.ModeLive:
		receipt, err := r.venue.PlaceMarketOrder(ctx, tokenID, domain.SideSell, 0)
		if err != nil || receipt == nil {
			slog.Warn("live sell not confirmed", "position", positionKey, "err", err)
			return nil
		}
		r.notifier.TradeClosed(marketName, strategy, receipt.Price, 0, false)
		return &domain.ExecutionResult{
			Status:  domain.ExecLive,
			OrderID: receipt.OrderID,
			Price:   receipt.Price,
			Shares:  receipt.Size,
		}
	}
	return nil
}

// LimitRequest is a limit-order intent.
type LimitRequest struct {
	TokenID     string
	ConditionID string
	MarketName  string
	Outcome     domain.Outcome
	Side        domain.Side
	Price       float64
	Shares      float64
	Strategy    string
}

// PlaceLimit places a limit order. In paper mode the order is recorded as a
// pending bookkeeping artifact only; no fill simulation is attempted.
func (r *Router) PlaceLimit(ctx context.Context, req LimitRequest) *domain.ExecutionResult {
	switch r.mode {
	case config.ModeLogOnly:
		slog.Info("[DRY RUN] LIMIT", "side", req.Side, "shares", req.Shares,
			"price", req.Price, "market", req.MarketName)
		return &domain.ExecutionResult{Status: domain.ExecDryRun, OrderID: "dry_limit"}

	case config.ModePaper:
		orderID := "paper_limit_" + shortID(uuid.NewString())
		r.wallet.AddPendingLimit(domain.PendingLimit{
			OrderID:     orderID,
			ConditionID: req.ConditionID,
			TokenID:     req.TokenID,
			MarketName:  req.MarketName,
			Outcome:     req.Outcome,
			Side:        req.Side,
			Price:       req.Price,
			Shares:      req.Shares,
			Strategy:    req.Strategy,
			PlacedAt:    time.Now().UTC(),
		})
		slog.Info("[PAPER LIMIT]", "side", req.Side, "shares", req.Shares,
			"target", req.Price, "market", req.MarketName)
		return &domain.ExecutionResult{
			Status:  domain.ExecPaperPending,
			OrderID: orderID,
			Price:   req.Price,
			Shares:  req.Shares,
			Paper:   true,
		}

	case config.ModeLive:
		receipt, err := r.venue.PlaceLimitOrder(ctx, req.TokenID, req.Side, req.Price, req.Shares)
		if err != nil || receipt == nil {
			slog.Warn("live limit not confirmed", "market", req.MarketName, "err", err)
			return nil
		}
		return &domain.ExecutionResult{
			Status:  domain.ExecLive,
			OrderID: receipt.OrderID,
			Price:   receipt.Price,
			Shares:  receipt.Size,
		}
	}
	return nil
}

// OpenOrders returns the venue's standing orders. Outside live mode there is
// no real order book to consult and the result is empty.
func (r *Router) OpenOrders(ctx context.Context) ([]domain.OrderReceipt, error) {
	if r.mode != config.ModeLive || r.venue == nil {
		return nil, nil
	}
	return r.venue.GetOpenOrders(ctx)
}

// CancelOrder cancels a standing live order. Outside live mode it is a no-op.
func (r *Router) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	if r.mode != config.ModeLive || r.venue == nil {
		return false, nil
	}
	return r.venue.CancelOrder(ctx, orderID)
}

// newTradeID generates a trade identifier like paper_3f2a9c01d4b7.
func newTradeID() string {
	u := uuid.New()
	return "paper_" + hex.EncodeToString(u[:])[:12]
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
