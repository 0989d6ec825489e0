// Package risk validates trade intents against configured limits before any
// order reaches the router. A breached limit is a returned value, not an
// error: rejections are expected and frequent.
package risk

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/ultratrader/config"
)

// Rule names the specific limit a violation tripped.
type Rule string

const (
	RuleMinTradeSize Rule = "min_trade_size"
	RuleMaxPosition  Rule = "max_position"
	RuleMaxOpen      Rule = "max_open_positions"
	RuleDailyLoss    Rule = "daily_loss_limit"
	RuleCapitalRisk  Rule = "capital_at_risk"
)

// Violation describes why a trade intent was rejected.
type Violation struct {
	Rule   Rule
	Detail string
}

func (v *Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// PortfolioView is the aggregate portfolio state the gate reads. Satisfied
// by *portfolio.Portfolio.
type PortfolioView interface {
	OpenPositionCount() int
	TotalInvested() float64
	DailyPnL() float64
}

// Gate validates new positions and computes sizing and exit prices.
// Stateless between calls; every check re-reads the live portfolio.
type Gate struct {
	cfg       config.RiskConfig
	sizing    config.StrategiesConfig
	portfolio PortfolioView
}

// NewGate creates a risk gate over the given portfolio view.
func NewGate(cfg config.RiskConfig, sizing config.StrategiesConfig, portfolio PortfolioView) *Gate {
	return &Gate{cfg: cfg, sizing: sizing, portfolio: portfolio}
}

// CheckNewPosition validates opening a position of the given USDC notional.
// Returns nil when allowed. Checks run in a fixed order and short-circuit on
// the first breach, so each rule is independently observable:
//
//  1. dust minimum
//  2. per-position cap
//  3. max concurrent open positions
//  4. daily loss kill-switch (blocks everything until the daily reset)
//  5. aggregate capital-at-risk ceiling
func (g *Gate) CheckNewPosition(notional float64) *Violation {
	if notional < g.cfg.MinTradeSize {
		return &Violation{RuleMinTradeSize,
			fmt.Sprintf("amount too small: $%.4f < $%.2f", notional, g.cfg.MinTradeSize)}
	}
	if notional > g.cfg.MaxPositionUSDC {
		return &Violation{RuleMaxPosition,
			fmt.Sprintf("position $%.2f exceeds max $%.2f", notional, g.cfg.MaxPositionUSDC)}
	}
	if g.portfolio.OpenPositionCount() >= g.cfg.MaxOpenPositions {
		return &Violation{RuleMaxOpen,
			fmt.Sprintf("max positions reached (%d)", g.cfg.MaxOpenPositions)}
	}
	if g.portfolio.DailyPnL() < -g.cfg.DailyLossLimit {
		return &Violation{RuleDailyLoss,
			fmt.Sprintf("daily loss limit hit ($%.2f)", g.portfolio.DailyPnL())}
	}
	ceiling := g.cfg.MaxPositionUSDC * float64(g.cfg.MaxOpenPositions)
	if g.portfolio.TotalInvested()+notional > ceiling {
		return &Violation{RuleCapitalRisk,
			fmt.Sprintf("total capital at risk would exceed $%.2f", ceiling)}
	}
	return nil
}

// PositionSize computes a safe notional for a new trade: min(per-position
// cap, 10% of available capital), further clamped by the strategy's own
// ceiling, scaled by confidence with a 0.1 floor (a qualifying signal is
// never zero-sized), clamped to [0.10, cap] and rounded to cents.
func (g *Gate) PositionSize(availableUSDC, confidence float64, strategy string) float64 {
	base := math.Min(g.cfg.MaxPositionUSDC, availableUSDC*0.10)

	switch strategy {
	case "sniper":
		base = math.Min(base, g.sizing.Sniper.Price*float64(g.sizing.Sniper.Shares)*2)
	case "mm":
		base = math.Min(base, g.sizing.MM.TradeSize)
	case "copy":
		base = math.Min(base, g.cfg.MaxPositionUSDC*(g.sizing.Copy.SizePercent/100))
	}

	size := base * math.Max(0.1, confidence)
	size = math.Max(0.10, math.Min(size, g.cfg.MaxPositionUSDC))
	return roundCents(size)
}

// SellPrice computes the exit target for a profit percentage, clamped to the
// venue's valid price domain [0.01, 0.99] and rounded to the 0.01 tick.
// Pure math — no knowledge of current market depth.
func SellPrice(avgBuyPrice, profitPct float64) float64 {
	sell := avgBuyPrice * (1 + profitPct/100)
	sell = math.Max(0.01, math.Min(0.99, sell))
	return roundCents(sell)
}

// ShouldCutLoss reports whether the drawdown from the average buy price has
// reached the loss threshold percentage.
func ShouldCutLoss(currentPrice, avgBuyPrice, lossPct float64) bool {
	if avgBuyPrice <= 0 {
		return false
	}
	loss := (avgBuyPrice - currentPrice) / avgBuyPrice * 100
	return loss >= lossPct
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
