package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/router"
)

const mmName = "mm"

// MarketMaker opera los mercados up/down de cripto que resuelven en slots
// cortos: compra el lado barato al empezar el slot y sale por target de
// precio o por cut loss temporal antes de la resolución.
type MarketMaker struct {
	deps Deps
	cfg  config.MMConfig
}

// NewMarketMaker crea la estrategia de market making por slots.
func NewMarketMaker(deps Deps, cfg config.MMConfig) *MarketMaker {
	return &MarketMaker{deps: deps, cfg: cfg}
}

func (m *MarketMaker) Name() string { return mmName }

func (m *MarketMaker) Interval() time.Duration { return 15 * time.Second }

// RunOnce gestiona salidas y busca slots nuevos para cada asset configurado.
func (m *MarketMaker) RunOnce(ctx context.Context) error {
	m.manageExits(ctx)

	markets, err := m.deps.Markets.ActiveMarkets(ctx, 100)
	if err != nil {
		return fmt.Errorf("marketmaker.RunOnce: %w", err)
	}

	for _, asset := range m.cfg.Assets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if mkt, ok := m.currentSlot(markets, asset); ok {
			m.enter(ctx, mkt)
		}
	}
	return nil
}

// currentSlot busca el mercado del asset que resuelve dentro del slot actual.
func (m *MarketMaker) currentSlot(markets []domain.Market, asset string) (domain.Market, bool) {
	window := time.Duration(m.cfg.SlotMinutes) * time.Minute
	for _, mkt := range markets {
		if !strings.Contains(strings.ToUpper(mkt.Question), strings.ToUpper(asset)) {
			continue
		}
		left := mkt.HoursToResolution() * float64(time.Hour)
		if left <= 0 || time.Duration(left) > window {
			continue
		}
		return mkt, true
	}
	return domain.Market{}, false
}

// enter compra el lado barato del slot si aún no hay posición en él.
func (m *MarketMaker) enter(ctx context.Context, mkt domain.Market) {
	yes, okY := mkt.TokenFor(domain.OutcomeYes)
	no, okN := mkt.TokenFor(domain.OutcomeNo)
	if !okY || !okN || yes.Price <= 0 || no.Price <= 0 {
		return
	}

	outcome, token := domain.OutcomeYes, yes
	if no.Price < yes.Price {
		outcome, token = domain.OutcomeNo, no
	}
	// Por encima del sell target ya no queda edge en el slot.
	if token.Price >= m.cfg.SellPrice {
		return
	}

	key := domain.PositionKey(mkt.ConditionID, token.TokenID)
	for _, p := range m.deps.Portfolio.PositionsByStrategy(mmName) {
		if p.Key() == key {
			return
		}
	}

	m.deps.OpenPosition(ctx, router.BuyRequest{
		TokenID:     token.TokenID,
		ConditionID: mkt.ConditionID,
		MarketName:  mkt.Question,
		Outcome:     outcome,
		Strategy:    mmName,
	}, 1.0)
}

// manageExits cierra por sell target alcanzado o por cut loss temporal: una
// posición en pérdidas más vieja que CutLossSeconds se corta antes de que
// el slot resuelva en contra.
func (m *MarketMaker) manageExits(ctx context.Context) {
	cutoff := time.Duration(m.cfg.CutLossSeconds) * time.Second
	now := time.Now().UTC()

	for _, pos := range m.deps.Portfolio.PositionsByStrategy(mmName) {
		if pos.CurrentPrice <= 0 {
			continue
		}
		hitTarget := pos.CurrentPrice >= m.cfg.SellPrice
		staleLoss := pos.PnL < 0 && now.Sub(pos.OpenedAt) >= cutoff
		if hitTarget || staleLoss {
			m.deps.ClosePosition(ctx, pos)
		}
	}
}
