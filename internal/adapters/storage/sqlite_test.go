package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/ultratrader/internal/adapters/storage"
	"github.com/alejandrodnm/ultratrader/internal/domain"
)

func record(id, strategy string, side domain.Side, total float64, ts time.Time) domain.TradeRecord {
	return domain.TradeRecord{
		TradeID:     id,
		Strategy:    strategy,
		ConditionID: "0xcond",
		TokenID:     "tok1",
		MarketName:  "Will BTC hit 100k?",
		Side:        side,
		Shares:      total / 0.50,
		Price:       0.50,
		Total:       total,
		Timestamp:   ts,
	}
}

func TestTradeArchive_ArchiveAndRecent(t *testing.T) {
	a, err := storage.NewTradeArchive(":memory:")
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		rec := record(fmt.Sprintf("t%d", i), "momentum", domain.SideBuy, 10, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, a.ArchiveTrade(ctx, rec))
	}

	trades, err := a.RecentTrades(ctx, 2)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Más recientes primero.
	assert.Equal(t, "t2", trades[0].TradeID)
	assert.Equal(t, "t1", trades[1].TradeID)
	assert.Equal(t, domain.SideBuy, trades[0].Side)
	assert.InDelta(t, 10.0, trades[0].Total, 1e-9)
}

func TestTradeArchive_DuplicateTradeIDIgnored(t *testing.T) {
	a, err := storage.NewTradeArchive(":memory:")
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, a.ArchiveTrade(ctx, record("t1", "momentum", domain.SideBuy, 10, now)))
	// El segundo write con el mismo ID no falla ni sobreescribe.
	require.NoError(t, a.ArchiveTrade(ctx, record("t1", "copy", domain.SideSell, 99, now)))

	trades, err := a.RecentTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "momentum", trades[0].Strategy)
}

func TestTradeArchive_StatsByStrategy(t *testing.T) {
	a, err := storage.NewTradeArchive(":memory:")
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, a.ArchiveTrade(ctx, record("t1", "momentum", domain.SideBuy, 10, now)))
	require.NoError(t, a.ArchiveTrade(ctx, record("t2", "momentum", domain.SideSell, 12, now)))
	require.NoError(t, a.ArchiveTrade(ctx, record("t3", "sniper", domain.SideBuy, 1, now)))

	stats, err := a.StatsByStrategy(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byName := make(map[string]int)
	for i, s := range stats {
		byName[s.Strategy] = i
	}
	mom := stats[byName["momentum"]]
	assert.Equal(t, 2, mom.Trades)
	assert.Equal(t, 1, mom.Buys)
	assert.Equal(t, 1, mom.Sells)
	assert.InDelta(t, 22.0, mom.Notional, 1e-9)

	snp := stats[byName["sniper"]]
	assert.Equal(t, 1, snp.Trades)
	assert.Equal(t, 0, snp.Sells)
}
