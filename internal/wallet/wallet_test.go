package wallet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/wallet"
)

// memStore implementa ports.StateStore en memoria.
type memStore struct {
	wallet    ports.WalletDocument
	hasWallet bool
	saves     int
}

func (m *memStore) LoadWallet() (ports.WalletDocument, bool) { return m.wallet, m.hasWallet }
func (m *memStore) SaveWallet(doc ports.WalletDocument) error {
	m.wallet = doc
	m.hasWallet = true
	m.saves++
	return nil
}
func (m *memStore) LoadPortfolio() (ports.PortfolioDocument, bool) {
	return ports.PortfolioDocument{}, false
}
func (m *memStore) SavePortfolio(ports.PortfolioDocument) error { return nil }

func buy(shares, price float64) wallet.BuyOrder {
	return wallet.BuyOrder{
		ConditionID: "0xcond",
		TokenID:     "tok1",
		MarketName:  "Will BTC hit 100k?",
		Outcome:     domain.OutcomeYes,
		Shares:      shares,
		Price:       price,
		Strategy:    "momentum",
		TradeID:     "t1",
	}
}

func TestExecuteBuy_AveragesEntryPrice(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)
	ctx := context.Background()

	pos := w.ExecuteBuy(ctx, buy(10, 1.00))
	require.NotNil(t, pos)

	o := buy(10, 2.00)
	o.TradeID = "t2"
	pos = w.ExecuteBuy(ctx, o)
	require.NotNil(t, pos)

	assert.InDelta(t, 20.0, pos.Shares, 1e-9)
	assert.InDelta(t, 1.50, pos.EntryPrice, 1e-9)
	assert.InDelta(t, 30.0, pos.TotalCost, 1e-9)
	assert.InDelta(t, 20.0, w.Balance(), 1e-9)
}

func TestExecuteSell_RealizesPnLAndCredits(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)
	ctx := context.Background()

	w.ExecuteBuy(ctx, buy(10, 1.00))
	o := buy(10, 2.00)
	o.TradeID = "t2"
	w.ExecuteBuy(ctx, o)

	key := domain.PositionKey("0xcond", "tok1")
	realized := w.ExecuteSell(ctx, key, 1.80, "momentum", "t3")

	assert.InDelta(t, 6.0, realized, 1e-9)
	assert.InDelta(t, 56.0, w.Balance(), 1e-9)
	assert.InDelta(t, 6.0, w.RealizedPnL(), 1e-9)
	assert.Empty(t, w.OpenPositions())
}

func TestExecuteBuy_InsufficientBalance(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)

	pos := w.ExecuteBuy(context.Background(), buy(100, 1.00))

	assert.Nil(t, pos)
	assert.InDelta(t, 50.0, w.Balance(), 1e-9)
	assert.Empty(t, w.RecentTrades(10))
}

func TestExecuteBuy_DustRejected(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)

	pos := w.ExecuteBuy(context.Background(), buy(0.1, 0.05))

	assert.Nil(t, pos)
	assert.InDelta(t, 50.0, w.Balance(), 1e-9)
}

func TestExecuteSell_UnknownPositionIsNoop(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)
	ctx := context.Background()
	w.ExecuteBuy(ctx, buy(10, 1.00))

	realized := w.ExecuteSell(ctx, "does-not-exist", 0.90, "momentum", "t9")

	assert.Equal(t, 0.0, realized)
	assert.InDelta(t, 40.0, w.Balance(), 1e-9)
	assert.Len(t, w.OpenPositions(), 1)
}

func TestCostBasisInvariant_AfterMerges(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 500)
	ctx := context.Background()

	prices := []float64{0.12, 0.57, 0.31, 0.88}
	for i, p := range prices {
		o := buy(7, p)
		o.TradeID = string(rune('a' + i))
		require.NotNil(t, w.ExecuteBuy(ctx, o))
	}

	positions := w.OpenPositions()
	require.Len(t, positions, 1)
	pos := positions[0]
	assert.InDelta(t, pos.Shares*pos.EntryPrice, pos.TotalCost, 1e-9)
}

func TestUpdatePrices_MarksWithoutTouchingCostBasis(t *testing.T) {
	store := &memStore{}
	w := wallet.New(store, nil, 50)
	w.ExecuteBuy(context.Background(), buy(10, 1.00))
	savesBefore := store.saves

	w.UpdatePrices(map[string]float64{"tok1": 1.50})

	pos := w.OpenPositions()[0]
	assert.InDelta(t, 1.50, pos.CurrentPrice, 1e-9)
	assert.InDelta(t, 5.0, pos.PnL, 1e-9)
	assert.InDelta(t, 50.0, pos.PnLPct, 1e-9)
	assert.InDelta(t, 1.00, pos.EntryPrice, 1e-9)
	// Los marks no se persisten.
	assert.Equal(t, savesBefore, store.saves)
}

func TestNew_RestoresPersistedState(t *testing.T) {
	store := &memStore{}
	w := wallet.New(store, nil, 50)
	ctx := context.Background()
	w.ExecuteBuy(ctx, buy(10, 1.00))

	restored := wallet.New(store, nil, 50)

	assert.InDelta(t, 40.0, restored.Balance(), 1e-9)
	assert.Len(t, restored.OpenPositions(), 1)
	assert.Len(t, restored.RecentTrades(10), 1)
}

func TestNew_NoDocumentStartsFresh(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 75)

	assert.InDelta(t, 75.0, w.Balance(), 1e-9)
	assert.Empty(t, w.OpenPositions())
}

func TestReset_WipesEverything(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 50)
	ctx := context.Background()
	w.ExecuteBuy(ctx, buy(10, 1.00))
	w.ExecuteSell(ctx, domain.PositionKey("0xcond", "tok1"), 1.50, "momentum", "t2")

	w.Reset(100)

	stats := w.GetStats()
	assert.InDelta(t, 100.0, stats.Balance, 1e-9)
	assert.InDelta(t, 100.0, stats.InitialBalance, 1e-9)
	assert.Equal(t, 0.0, stats.RealizedPnL)
	assert.Equal(t, 0, stats.OpenPositions)
	assert.Equal(t, 0, stats.TradeCount)
}

func TestGetStats_WinRate(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 100)
	ctx := context.Background()

	// Ganador: compra a 0.50, vende a 0.80.
	w.ExecuteBuy(ctx, buy(10, 0.50))
	w.ExecuteSell(ctx, domain.PositionKey("0xcond", "tok1"), 0.80, "momentum", "t2")

	// Perdedor en otro mercado: compra a 0.60, vende a 0.40.
	o := buy(10, 0.60)
	o.ConditionID = "0xother"
	o.TokenID = "tok2"
	o.MarketName = "Will ETH flip BTC?"
	o.TradeID = "t3"
	w.ExecuteBuy(ctx, o)
	w.ExecuteSell(ctx, domain.PositionKey("0xother", "tok2"), 0.40, "momentum", "t4")

	stats := w.GetStats()
	assert.InDelta(t, 50.0, stats.WinRate, 1e-9)
	assert.Equal(t, 2, stats.TradeCount)
}

func TestRecentTrades_NewestFirst(t *testing.T) {
	w := wallet.New(&memStore{}, nil, 100)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		o := buy(1, 0.50)
		o.TradeID = string(rune('a' + i))
		w.ExecuteBuy(ctx, o)
	}

	trades := w.RecentTrades(2)
	require.Len(t, trades, 2)
	assert.Equal(t, "c", trades[0].TradeID)
	assert.Equal(t, "b", trades[1].TradeID)
}
