package strategy_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/portfolio"
	"github.com/alejandrodnm/ultratrader/internal/risk"
	"github.com/alejandrodnm/ultratrader/internal/router"
	"github.com/alejandrodnm/ultratrader/internal/strategy"
)

type fakeVenue struct {
	limitCalls int
	open       []domain.OrderReceipt
	canceled   []string
	receipt    *domain.OrderReceipt
}

func (f *fakeVenue) PlaceMarketOrder(context.Context, string, domain.Side, float64) (*domain.OrderReceipt, error) {
	return f.receipt, nil
}

func (f *fakeVenue) PlaceLimitOrder(context.Context, string, domain.Side, float64, float64) (*domain.OrderReceipt, error) {
	f.limitCalls++
	return &domain.OrderReceipt{OrderID: fmt.Sprintf("ord-%d", f.limitCalls)}, nil
}

func (f *fakeVenue) CancelOrder(_ context.Context, orderID string) (bool, error) {
	f.canceled = append(f.canceled, orderID)
	return true, nil
}

func (f *fakeVenue) GetOpenOrders(context.Context) ([]domain.OrderReceipt, error) {
	return f.open, nil
}

func liveDeps(t *testing.T, venue *fakeVenue, markets *fakeMarkets) strategy.Deps {
	t.Helper()
	book := portfolio.New(&memStore{}, nil)
	gate := risk.NewGate(config.RiskConfig{
		MinTradeSize:     0.01,
		MaxPositionUSDC:  50,
		MaxOpenPositions: 5,
		DailyLossLimit:   20,
	}, config.StrategiesConfig{}, book)
	r := router.New(config.ModeLive, nil, nil, venue, &fakeNotifier{})

	return strategy.Deps{
		Router:    r,
		Gate:      gate,
		Portfolio: book,
		Markets:   markets,
		Notifier:  &fakeNotifier{},
		Capital:   100,
	}
}

func sniperCfg() config.SniperConfig {
	return config.SniperConfig{
		Assets:     []string{"BTC"},
		Price:      0.02,
		Shares:     50,
		SellTarget: 0.10,
	}
}

func TestSniper_RegistersFillAndExitsAtTarget(t *testing.T) {
	venue := &fakeVenue{}
	markets := &fakeMarkets{markets: []domain.Market{btcMarket(0.02)}}
	deps := liveDeps(t, venue, markets)
	sn := strategy.NewSniper(deps, sniperCfg())
	ctx := context.Background()

	// Primer ciclo: coloca la orden límite, sin posición todavía.
	require.NoError(t, sn.RunOnce(ctx))
	assert.Equal(t, 1, venue.limitCalls)
	assert.Equal(t, 0, deps.Portfolio.OpenPositionCount())

	// La orden sigue en el libro: ni fill ni re-colocación.
	venue.open = []domain.OrderReceipt{{OrderID: "ord-1"}}
	require.NoError(t, sn.RunOnce(ctx))
	assert.Equal(t, 0, deps.Portfolio.OpenPositionCount())
	assert.Equal(t, 1, venue.limitCalls)

	// La orden desaparece del libro: fill registrado como posición abierta.
	venue.open = nil
	require.NoError(t, sn.RunOnce(ctx))
	require.Equal(t, 1, deps.Portfolio.OpenPositionCount())
	pos := deps.Portfolio.OpenPositions()[0]
	assert.Equal(t, "sniper", pos.Strategy)
	assert.InDelta(t, 0.02, pos.EntryPrice, 1e-9)
	assert.InDelta(t, 50.0, pos.Shares, 1e-9)
	require.Len(t, deps.Portfolio.RecentTrades(5), 1)
	assert.Equal(t, domain.SideBuy, deps.Portfolio.RecentTrades(5)[0].Side)

	// Con el mark en el sell target el siguiente ciclo vende.
	deps.Portfolio.UpdatePrice(pos.Key(), 0.12)
	venue.receipt = &domain.OrderReceipt{OrderID: "mkt-1", Price: 0.12, Size: 50}
	require.NoError(t, sn.RunOnce(ctx))
	assert.Equal(t, 0, deps.Portfolio.OpenPositionCount())
	// 50 shares * (0.12 - 0.02) = +5.
	assert.InDelta(t, 5.0, deps.Portfolio.DailyPnL(), 1e-9)
}

func TestSniper_BookUnavailableIsNotAFill(t *testing.T) {
	venue := &fakeVenue{}
	markets := &fakeMarkets{markets: []domain.Market{btcMarket(0.02)}}
	deps := liveDeps(t, venue, markets)
	sn := strategy.NewSniper(deps, sniperCfg())
	ctx := context.Background()

	require.NoError(t, sn.RunOnce(ctx))
	venue.open = []domain.OrderReceipt{{OrderID: "ord-1"}}
	require.NoError(t, sn.RunOnce(ctx))

	// Mientras la orden siga en pie nunca se registra una posición.
	assert.Equal(t, 0, deps.Portfolio.OpenPositionCount())
	assert.Empty(t, deps.Portfolio.RecentTrades(5))
}

func TestSniper_PrunesBidsOnInactiveMarkets(t *testing.T) {
	venue := &fakeVenue{}
	markets := &fakeMarkets{markets: []domain.Market{btcMarket(0.02)}}
	deps := liveDeps(t, venue, markets)
	sn := strategy.NewSniper(deps, sniperCfg())
	ctx := context.Background()

	require.NoError(t, sn.RunOnce(ctx))
	require.Equal(t, 1, venue.limitCalls)
	venue.open = []domain.OrderReceipt{{OrderID: "ord-1"}}

	// El mercado sale de la lista activa: la orden se cancela y se descarta,
	// sin registrar ninguna posición.
	markets.markets = nil
	require.NoError(t, sn.RunOnce(ctx))
	assert.Equal(t, []string{"ord-1"}, venue.canceled)
	assert.Equal(t, 0, deps.Portfolio.OpenPositionCount())

	// Al volver el mercado se coloca una orden nueva.
	markets.markets = []domain.Market{btcMarket(0.02)}
	venue.open = nil
	require.NoError(t, sn.RunOnce(ctx))
	assert.Equal(t, 2, venue.limitCalls)
}
