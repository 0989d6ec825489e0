package ports

import (
	"context"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// VenueExecutor places and cancels real orders on the venue (live mode only).
//
// Any method may signal unavailability with a nil receipt / false / empty
// list instead of an error. Callers must treat a missing result as "could not
// confirm" — the venue may have accepted the order despite a network error on
// the response — and must never blindly retry placement.
type VenueExecutor interface {
	// PlaceMarketOrder submits a market order for the given USDC notional.
	PlaceMarketOrder(ctx context.Context, tokenID string, side domain.Side, notional float64) (*domain.OrderReceipt, error)

	// PlaceLimitOrder submits a GTC limit order.
	PlaceLimitOrder(ctx context.Context, tokenID string, side domain.Side, price, shares float64) (*domain.OrderReceipt, error)

	// CancelOrder cancels a specific order by venue order ID.
	CancelOrder(ctx context.Context, orderID string) (bool, error)

	// GetOpenOrders returns all currently open orders for this account.
	GetOpenOrders(ctx context.Context) ([]domain.OrderReceipt, error)
}
