package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/router"
)

const copyName = "copy"

// CopyTrade replica las compras de wallets observadas en el feed de trades
// del venue, con sizing propio (nunca el tamaño del trader copiado).
type CopyTrade struct {
	deps Deps
	cfg  config.CopyConfig
	feed ports.TradeFeed

	trades <-chan domain.Trade
}

// NewCopyTrade crea la estrategia de copy-trading.
func NewCopyTrade(deps Deps, cfg config.CopyConfig, feed ports.TradeFeed) *CopyTrade {
	return &CopyTrade{deps: deps, cfg: cfg, feed: feed}
}

func (c *CopyTrade) Name() string { return copyName }

func (c *CopyTrade) Interval() time.Duration { return 5 * time.Second }

// RunOnce drena los trades acumulados del feed y gestiona las salidas.
// La suscripción se abre en el primer ciclo.
func (c *CopyTrade) RunOnce(ctx context.Context) error {
	if c.trades == nil {
		ch, err := c.feed.Subscribe(ctx, c.cfg.Wallets)
		if err != nil {
			return fmt.Errorf("copytrade.RunOnce: %w", err)
		}
		c.trades = ch
	}

	c.manageExits(ctx)

	for {
		select {
		case t, ok := <-c.trades:
			if !ok {
				// Feed cerrado: resuscribir en el próximo ciclo.
				c.trades = nil
				return fmt.Errorf("copytrade.RunOnce: trade feed closed")
			}
			c.handle(ctx, t)
		default:
			return nil
		}
	}
}

// handle procesa un trade observado. Solo se copian compras.
func (c *CopyTrade) handle(ctx context.Context, t domain.Trade) {
	if t.Side != domain.SideBuy {
		return
	}

	// La convicción del trader copiado escala con el notional: $100+ es
	// señal máxima.
	confidence := t.Size / 100
	if confidence > 1 {
		confidence = 1
	}

	c.deps.OpenPosition(ctx, router.BuyRequest{
		TokenID:     t.TokenID,
		ConditionID: t.ConditionID,
		MarketName:  t.MarketName,
		Outcome:     t.Outcome,
		Strategy:    copyName,
	}, confidence)
}

// manageExits vende posiciones copiadas que alcanzan el auto-sell target.
func (c *CopyTrade) manageExits(ctx context.Context) {
	for _, pos := range c.deps.Portfolio.PositionsByStrategy(copyName) {
		if pos.CurrentPrice <= 0 {
			continue
		}
		if pos.PnLPct >= c.cfg.AutoSellProfitPct {
			c.deps.ClosePosition(ctx, pos)
		}
	}
}
