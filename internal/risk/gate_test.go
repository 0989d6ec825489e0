package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/risk"
)

// fakePortfolio implementa risk.PortfolioView con valores fijos.
type fakePortfolio struct {
	open     int
	invested float64
	daily    float64
}

func (f fakePortfolio) OpenPositionCount() int { return f.open }
func (f fakePortfolio) TotalInvested() float64 { return f.invested }
func (f fakePortfolio) DailyPnL() float64      { return f.daily }

func defaultRisk() config.RiskConfig {
	return config.RiskConfig{
		MinTradeSize:     0.01,
		MaxPositionUSDC:  50,
		MaxOpenPositions: 5,
		DailyLossLimit:   20,
	}
}

func newGate(view fakePortfolio) *risk.Gate {
	return risk.NewGate(defaultRisk(), config.StrategiesConfig{
		Copy:   config.CopyConfig{SizePercent: 10},
		MM:     config.MMConfig{TradeSize: 10},
		Sniper: config.SniperConfig{Price: 0.02, Shares: 50},
	}, view)
}

func TestCheckNewPosition_Allows(t *testing.T) {
	g := newGate(fakePortfolio{open: 1, invested: 30, daily: -5})
	assert.Nil(t, g.CheckNewPosition(10))
}

func TestCheckNewPosition_MinTradeSize(t *testing.T) {
	g := newGate(fakePortfolio{})
	v := g.CheckNewPosition(0.005)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleMinTradeSize, v.Rule)
}

func TestCheckNewPosition_MaxPosition(t *testing.T) {
	g := newGate(fakePortfolio{})
	v := g.CheckNewPosition(51)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleMaxPosition, v.Rule)
}

func TestCheckNewPosition_MaxOpenPositions(t *testing.T) {
	g := newGate(fakePortfolio{open: 5})
	v := g.CheckNewPosition(10)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleMaxOpen, v.Rule)
}

func TestCheckNewPosition_DailyLossLimit(t *testing.T) {
	g := newGate(fakePortfolio{daily: -20.01})
	v := g.CheckNewPosition(10)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleDailyLoss, v.Rule)
}

func TestCheckNewPosition_DailyLossAtLimitStillAllowed(t *testing.T) {
	// El límite es estricto: exactamente -20 aún no dispara el kill-switch.
	g := newGate(fakePortfolio{daily: -20})
	assert.Nil(t, g.CheckNewPosition(10))
}

func TestCheckNewPosition_CapitalAtRisk(t *testing.T) {
	// Techo agregado: 50 * 5 = 250.
	g := newGate(fakePortfolio{open: 4, invested: 245})
	v := g.CheckNewPosition(10)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleCapitalRisk, v.Rule)
}

func TestCheckNewPosition_OrderShortCircuits(t *testing.T) {
	// Con varias reglas violadas gana la primera del orden fijo.
	g := newGate(fakePortfolio{open: 5, daily: -100, invested: 500})
	v := g.CheckNewPosition(60)
	require.NotNil(t, v)
	assert.Equal(t, risk.RuleMaxPosition, v.Rule)
}

func TestPositionSize_TenPercentOfCapital(t *testing.T) {
	g := newGate(fakePortfolio{})
	// 10% de 100 = 10, confianza plena.
	assert.InDelta(t, 10.0, g.PositionSize(100, 1.0, "momentum"), 1e-9)
}

func TestPositionSize_CapDominates(t *testing.T) {
	g := newGate(fakePortfolio{})
	// 10% de 10000 = 1000 > cap 50.
	assert.InDelta(t, 50.0, g.PositionSize(10000, 1.0, "momentum"), 1e-9)
}

func TestPositionSize_ConfidenceFloor(t *testing.T) {
	g := newGate(fakePortfolio{})
	// Confianza 0 escala por el suelo 0.1, nunca a cero.
	assert.InDelta(t, 1.0, g.PositionSize(100, 0, "momentum"), 1e-9)
}

func TestPositionSize_StrategyCeilings(t *testing.T) {
	g := newGate(fakePortfolio{})

	// sniper: 0.02 * 50 * 2 = 2.
	assert.InDelta(t, 2.0, g.PositionSize(1000, 1.0, "sniper"), 1e-9)
	// mm: trade size 10.
	assert.InDelta(t, 10.0, g.PositionSize(1000, 1.0, "mm"), 1e-9)
	// copy: 50 * 10% = 5.
	assert.InDelta(t, 5.0, g.PositionSize(1000, 1.0, "copy"), 1e-9)
}

func TestPositionSize_MinimumTenCents(t *testing.T) {
	g := newGate(fakePortfolio{})
	assert.InDelta(t, 0.10, g.PositionSize(1, 0.1, "momentum"), 1e-9)
}

func TestSellPrice_TwentyPercentTarget(t *testing.T) {
	assert.InDelta(t, 0.60, risk.SellPrice(0.50, 20), 1e-9)
}

func TestSellPrice_ClampedToVenueDomain(t *testing.T) {
	assert.InDelta(t, 0.99, risk.SellPrice(0.97, 20), 1e-9)
	assert.InDelta(t, 0.01, risk.SellPrice(0.005, 0), 1e-9)
}

func TestShouldCutLoss(t *testing.T) {
	assert.True(t, risk.ShouldCutLoss(0.25, 0.50, 50))
	assert.False(t, risk.ShouldCutLoss(0.26, 0.50, 50))
	assert.False(t, risk.ShouldCutLoss(0.25, 0, 50))
}
