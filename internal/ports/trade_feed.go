package ports

import (
	"context"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// TradeFeed streams venue trades in real time (copy-trading input).
type TradeFeed interface {
	// Subscribe starts streaming trades for the given wallet addresses.
	// The channel closes when ctx is cancelled or the feed shuts down.
	Subscribe(ctx context.Context, wallets []string) (<-chan domain.Trade, error)
}
