package ports

import (
	"context"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// StrategyStats are per-strategy aggregates computed from the archive.
type StrategyStats struct {
	Strategy string
	Trades   int
	Buys     int
	Sells    int
	Notional float64
}

// TradeArchive is the append-only record of every executed trade.
//
// The wallet and portfolio documents keep only a bounded window of recent
// trades; the archive keeps the full history.
type TradeArchive interface {
	// ArchiveTrade appends one trade. Records are never updated or deleted.
	ArchiveTrade(ctx context.Context, t domain.TradeRecord) error

	// RecentTrades returns the most recent trades, newest first.
	RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error)

	// StatsByStrategy aggregates trade counts and notional per strategy.
	StatsByStrategy(ctx context.Context) ([]StrategyStats, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
