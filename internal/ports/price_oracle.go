package ports

import (
	"context"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// PriceOracle provides the current best price for an outcome token.
type PriceOracle interface {
	// GetPrice devuelve el mejor precio actual del token para el lado dado
	// (BUY = ask, SELL = bid). 0 significa "no disponible" — nunca ejecutar
	// un trade contra un precio 0.
	GetPrice(ctx context.Context, tokenID string, side domain.Side) (float64, error)
}
