package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/risk"
	"github.com/alejandrodnm/ultratrader/internal/router"
)

const momentumName = "momentum"

// Momentum compra el lado de un mercado cuyo precio se está moviendo con
// fuerza, y sale por profit target o cut loss.
//
// La señal es el cambio relativo del precio del token YES entre dos ciclos
// consecutivos, normalizado a [0,1]. Sin histórico previo no hay señal.
type Momentum struct {
	deps Deps
	cfg  config.MomentumConfig

	// último precio YES observado por condition ID
	lastPrice map[string]float64
}

// NewMomentum crea la estrategia de momentum.
func NewMomentum(deps Deps, cfg config.MomentumConfig) *Momentum {
	return &Momentum{deps: deps, cfg: cfg, lastPrice: make(map[string]float64)}
}

func (m *Momentum) Name() string { return momentumName }

func (m *Momentum) Interval() time.Duration {
	return time.Duration(m.cfg.IntervalSeconds) * time.Second
}

// RunOnce ejecuta un ciclo: gestionar salidas primero, luego buscar entradas.
func (m *Momentum) RunOnce(ctx context.Context) error {
	m.manageExits(ctx)

	markets, err := m.deps.Markets.ActiveMarkets(ctx, 50)
	if err != nil {
		return fmt.Errorf("momentum.RunOnce: %w", err)
	}

	for _, mkt := range markets {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.evaluate(ctx, mkt)
	}
	return nil
}

// evaluate calcula la señal de momentum y entra si supera el mínimo.
func (m *Momentum) evaluate(ctx context.Context, mkt domain.Market) {
	yes, ok := mkt.TokenFor(domain.OutcomeYes)
	if !ok || yes.Price <= 0 {
		return
	}

	prev, seen := m.lastPrice[mkt.ConditionID]
	m.lastPrice[mkt.ConditionID] = yes.Price
	if !seen || prev <= 0 {
		return
	}

	// Un movimiento del 5% en un ciclo satura la señal.
	delta := (yes.Price - prev) / prev
	strength := math.Min(1, math.Abs(delta)/0.05)
	if strength < m.cfg.MinStrength {
		return
	}

	// Subida → comprar YES, bajada → comprar NO.
	outcome := domain.OutcomeYes
	token := yes
	if delta < 0 {
		no, ok := mkt.TokenFor(domain.OutcomeNo)
		if !ok {
			return
		}
		outcome = domain.OutcomeNo
		token = no
	}

	// No promediar entradas en el mismo mercado dentro de la estrategia.
	key := domain.PositionKey(mkt.ConditionID, token.TokenID)
	for _, p := range m.deps.Portfolio.PositionsByStrategy(momentumName) {
		if p.Key() == key {
			return
		}
	}

	m.deps.OpenPosition(ctx, router.BuyRequest{
		TokenID:     token.TokenID,
		ConditionID: mkt.ConditionID,
		MarketName:  mkt.Question,
		Outcome:     outcome,
		Strategy:    momentumName,
	}, strength)
}

// manageExits cierra posiciones que alcanzan el profit target o el cut loss.
func (m *Momentum) manageExits(ctx context.Context) {
	for _, pos := range m.deps.Portfolio.PositionsByStrategy(momentumName) {
		if pos.CurrentPrice <= 0 {
			continue
		}
		takeProfit := pos.PnLPct >= m.cfg.ProfitTargetPct
		cutLoss := risk.ShouldCutLoss(pos.CurrentPrice, pos.EntryPrice, m.cfg.CutLossPct)
		if takeProfit || cutLoss {
			m.deps.ClosePosition(ctx, pos)
		}
	}
}
