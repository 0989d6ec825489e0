package storage

// sqlite.go — archivo de trades append-only.
//
// Los documentos JSON del wallet/portfolio retienen solo los últimos N
// trades; esta tabla guarda el historial completo. Las filas nunca se
// actualizan ni se borran.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS trades (
    trade_id       TEXT PRIMARY KEY,
    strategy       TEXT NOT NULL,
    condition_id   TEXT NOT NULL,
    token_id       TEXT NOT NULL,
    market_name    TEXT,
    side           TEXT NOT NULL,
    shares         REAL NOT NULL,
    price          REAL NOT NULL,
    total          REAL NOT NULL,
    balance_before REAL NOT NULL DEFAULT 0,
    balance_after  REAL NOT NULL DEFAULT 0,
    timestamp      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_ts       ON trades(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);
CREATE INDEX IF NOT EXISTS idx_trades_market   ON trades(condition_id);
`

// TradeArchive implementa ports.TradeArchive usando SQLite (pure Go, sin CGo).
type TradeArchive struct {
	db *sql.DB
}

// NewTradeArchive abre (o crea) la base de datos en la ruta dada.
func NewTradeArchive(path string) (*TradeArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewTradeArchive: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewTradeArchive: apply schema: %w", err)
	}
	return &TradeArchive{db: db}, nil
}

// ArchiveTrade appends one trade record. Re-archiving an existing trade_id
// is ignored — the first write wins, records are immutable.
func (a *TradeArchive) ArchiveTrade(ctx context.Context, t domain.TradeRecord) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO trades (trade_id, strategy, condition_id, token_id, market_name,
		                    side, shares, price, total, balance_before, balance_after, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade_id) DO NOTHING`,
		t.TradeID, t.Strategy, t.ConditionID, t.TokenID, t.MarketName,
		string(t.Side), t.Shares, t.Price, t.Total,
		t.BalanceBefore, t.BalanceAfter, t.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storage.ArchiveTrade: %w", err)
	}
	return nil
}

// RecentTrades returns the most recent trades, newest first.
func (a *TradeArchive) RecentTrades(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT trade_id, strategy, condition_id, token_id, market_name,
		       side, shares, price, total, balance_before, balance_after, timestamp
		FROM trades ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentTrades: %w", err)
	}
	defer rows.Close()

	var out []domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var side, ts string
		var market sql.NullString
		if err := rows.Scan(
			&t.TradeID, &t.Strategy, &t.ConditionID, &t.TokenID, &market,
			&side, &t.Shares, &t.Price, &t.Total,
			&t.BalanceBefore, &t.BalanceAfter, &ts,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentTrades: scan: %w", err)
		}
		t.Side = domain.Side(side)
		if market.Valid {
			t.MarketName = market.String
		}
		t.Timestamp, _ = time.Parse(time.RFC3339, ts)
		out = append(out, t)
	}
	return out, rows.Err()
}

// StatsByStrategy aggregates trade counts and notional per strategy.
func (a *TradeArchive) StatsByStrategy(ctx context.Context) ([]ports.StrategyStats, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT strategy,
		       COUNT(*),
		       SUM(CASE WHEN side = 'BUY'  THEN 1 ELSE 0 END),
		       SUM(CASE WHEN side = 'SELL' THEN 1 ELSE 0 END),
		       SUM(total)
		FROM trades GROUP BY strategy ORDER BY strategy`)
	if err != nil {
		return nil, fmt.Errorf("storage.StatsByStrategy: %w", err)
	}
	defer rows.Close()

	var out []ports.StrategyStats
	for rows.Next() {
		var s ports.StrategyStats
		if err := rows.Scan(&s.Strategy, &s.Trades, &s.Buys, &s.Sells, &s.Notional); err != nil {
			return nil, fmt.Errorf("storage.StatsByStrategy: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (a *TradeArchive) Close() error {
	return a.db.Close()
}
