package storage

// jsonfile.go — persistencia de documentos JSON con escritura atómica.
//
// Cada ledger es un documento completo reescrito en cada mutación:
//   - paper_wallet.json   wallet virtual (balance, posiciones, trades)
//   - positions.json      posiciones del portfolio live
//   - trades.json         historial de trades + P&L diario/total
//
// La escritura es write-temp-then-rename: un crash a mitad de escritura
// nunca deja un archivo truncado. La carga nunca es fatal: un documento
// ilegible devuelve ok=false y el caller arranca con el estado por defecto.

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/ports"
)

const (
	walletFile    = "paper_wallet.json"
	positionsFile = "positions.json"
	tradesFile    = "trades.json"
)

// JSONStore implements ports.StateStore over plain JSON files in a data dir.
type JSONStore struct {
	dir string
}

// NewJSONStore creates the store, ensuring the data directory exists.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewJSONStore: mkdir %q: %w", dir, err)
	}
	return &JSONStore{dir: dir}, nil
}

// LoadWallet reads the wallet document. ok=false means "start fresh".
func (s *JSONStore) LoadWallet() (ports.WalletDocument, bool) {
	var doc ports.WalletDocument
	if !s.readJSON(walletFile, &doc) {
		return ports.WalletDocument{}, false
	}
	if doc.Positions == nil {
		doc.Positions = make(map[string]*domain.Position)
	}
	return doc, true
}

// SaveWallet atomically rewrites the wallet document.
func (s *JSONStore) SaveWallet(doc ports.WalletDocument) error {
	return s.writeJSON(walletFile, doc)
}

// tradesDocument is the on-disk shape of the trade-history ledger.
type tradesDocument struct {
	Trades   []domain.TradeRecord `json:"trades"`
	DailyPnL float64              `json:"daily_pnl"`
	TotalPnL float64              `json:"total_pnl"`
}

// LoadPortfolio joins the positions and trade-history documents. Either
// document may be missing independently (older deployments); missing parts
// default rather than fail.
func (s *JSONStore) LoadPortfolio() (ports.PortfolioDocument, bool) {
	positions := make(map[string]*domain.Position)
	havePositions := s.readJSON(positionsFile, &positions)

	var trades tradesDocument
	haveTrades := s.readJSON(tradesFile, &trades)

	if !havePositions && !haveTrades {
		return ports.PortfolioDocument{}, false
	}
	return ports.PortfolioDocument{
		Positions: positions,
		Trades:    trades.Trades,
		DailyPnL:  trades.DailyPnL,
		TotalPnL:  trades.TotalPnL,
	}, true
}

// SavePortfolio splits the aggregate into the two on-disk documents.
func (s *JSONStore) SavePortfolio(doc ports.PortfolioDocument) error {
	positions := doc.Positions
	if positions == nil {
		positions = make(map[string]*domain.Position)
	}
	if err := s.writeJSON(positionsFile, positions); err != nil {
		return err
	}
	return s.writeJSON(tradesFile, tradesDocument{
		Trades:   doc.Trades,
		DailyPnL: doc.DailyPnL,
		TotalPnL: doc.TotalPnL,
	})
}

// readJSON decodes name into out. false if missing or unparseable; a parse
// failure is logged and treated as absent (recover-with-defaults policy).
func (s *JSONStore) readJSON(name string, out any) bool {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("state file unreadable, starting fresh", "file", path, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("state file corrupt, starting fresh", "file", path, "err", err)
		return false
	}
	return true
}

// writeJSON writes the document to a temp file and renames it into place.
func (s *JSONStore) writeJSON(name string, v any) error {
	path := filepath.Join(s.dir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage.writeJSON: marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage.writeJSON: temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage.writeJSON: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage.writeJSON: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage.writeJSON: rename %s: %w", name, err)
	}
	return nil
}
