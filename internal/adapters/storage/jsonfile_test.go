package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/internal/adapters/storage"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
)

func walletDoc() ports.WalletDocument {
	now := time.Now().UTC().Truncate(time.Second)
	return ports.WalletDocument{
		Balance:        42.50,
		InitialBalance: 50,
		RealizedPnL:    -7.50,
		Positions: map[string]*domain.Position{
			"0xcond-tok1": {
				ConditionID: "0xcond",
				TokenID:     "tok1",
				MarketName:  "Will BTC hit 100k?",
				Outcome:     domain.OutcomeYes,
				Shares:      10,
				EntryPrice:  0.50,
				TotalCost:   5,
				Strategy:    "momentum",
				Status:      domain.PositionOpen,
				OpenedAt:    now,
				UpdatedAt:   now,
			},
		},
		Trades: []domain.TradeRecord{
			{TradeID: "t1", Side: domain.SideBuy, Shares: 10, Price: 0.50, Total: 5, Timestamp: now},
		},
	}
}

func TestJSONStore_WalletRoundTrip(t *testing.T) {
	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveWallet(walletDoc()))

	got, ok := store.LoadWallet()
	require.True(t, ok)
	assert.InDelta(t, 42.50, got.Balance, 1e-9)
	assert.InDelta(t, -7.50, got.RealizedPnL, 1e-9)
	require.Contains(t, got.Positions, "0xcond-tok1")
	assert.InDelta(t, 0.50, got.Positions["0xcond-tok1"].EntryPrice, 1e-9)
	require.Len(t, got.Trades, 1)
	assert.Equal(t, "t1", got.Trades[0].TradeID)
}

func TestJSONStore_MissingFilesStartFresh(t *testing.T) {
	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.LoadWallet()
	assert.False(t, ok)
	_, ok = store.LoadPortfolio()
	assert.False(t, ok)
}

func TestJSONStore_CorruptWalletStartsFresh(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewJSONStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper_wallet.json"),
		[]byte("{not json"), 0o644))

	_, ok := store.LoadWallet()
	assert.False(t, ok)
}

func TestJSONStore_PortfolioRoundTrip(t *testing.T) {
	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	doc := ports.PortfolioDocument{
		Positions: map[string]*domain.Position{
			"0xa-tok": {ConditionID: "0xa", TokenID: "tok", Status: domain.PositionOpen},
		},
		Trades:   []domain.TradeRecord{{TradeID: "t1"}},
		DailyPnL: -3.25,
		TotalPnL: 12.75,
	}
	require.NoError(t, store.SavePortfolio(doc))

	got, ok := store.LoadPortfolio()
	require.True(t, ok)
	assert.InDelta(t, -3.25, got.DailyPnL, 1e-9)
	assert.InDelta(t, 12.75, got.TotalPnL, 1e-9)
	assert.Contains(t, got.Positions, "0xa-tok")
	require.Len(t, got.Trades, 1)
}

func TestJSONStore_PortfolioSurvivesMissingTradesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewJSONStore(dir)
	require.NoError(t, err)

	doc := ports.PortfolioDocument{
		Positions: map[string]*domain.Position{
			"0xa-tok": {ConditionID: "0xa", TokenID: "tok", Status: domain.PositionOpen},
		},
		DailyPnL: -1,
	}
	require.NoError(t, store.SavePortfolio(doc))
	// Solo el ledger de trades desaparece; las posiciones deben sobrevivir.
	require.NoError(t, os.Remove(filepath.Join(dir, "trades.json")))

	got, ok := store.LoadPortfolio()
	require.True(t, ok)
	assert.Contains(t, got.Positions, "0xa-tok")
	assert.Equal(t, 0.0, got.DailyPnL)
}

func TestJSONStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewJSONStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveWallet(walletDoc()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}
