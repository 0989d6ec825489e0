package ports

import "github.com/alejandrodnm/ultratrader/internal/domain"

// WalletDocument is the single JSON document holding the virtual wallet.
// Loading a document with missing optional fields must default them; a
// document that cannot be parsed at all yields a fresh default state.
type WalletDocument struct {
	Balance        float64                     `json:"balance"`
	InitialBalance float64                     `json:"initial_balance"`
	RealizedPnL    float64                     `json:"realized_pnl"`
	Positions      map[string]*domain.Position `json:"positions"`
	Trades         []domain.TradeRecord        `json:"trades"`
	PendingLimits  []domain.PendingLimit       `json:"pending_limits,omitempty"`
	LastUpdated    string                      `json:"last_updated,omitempty"`
}

// PortfolioDocument holds the live portfolio's positions and trade history.
type PortfolioDocument struct {
	Positions map[string]*domain.Position `json:"positions"`
	Trades    []domain.TradeRecord        `json:"trades"`
	DailyPnL  float64                     `json:"daily_pnl"`
	TotalPnL  float64                     `json:"total_pnl"`
}

// StateStore persists the wallet and portfolio documents.
//
// Save rewrites the whole document atomically (write-temp-then-rename): a
// crash mid-write never leaves a truncated file behind. Load never fails the
// process: an unreadable file returns ok=false and the caller starts from
// the configured defaults.
type StateStore interface {
	LoadWallet() (doc WalletDocument, ok bool)
	SaveWallet(doc WalletDocument) error

	LoadPortfolio() (doc PortfolioDocument, ok bool)
	SavePortfolio(doc PortfolioDocument) error
}
