package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// GetPrice consulta el mejor precio del token en el CLOB.
// BUY devuelve el ask, SELL el bid. 0 significa "no disponible".
func (c *Client) GetPrice(ctx context.Context, tokenID string, side domain.Side) (float64, error) {
	u := fmt.Sprintf("%s/price?token_id=%s&side=%s",
		c.clobBase, url.QueryEscape(tokenID), string(side))

	var resp priceResponse
	if err := c.get(ctx, c.priceLimiter, u, &resp); err != nil {
		return 0, fmt.Errorf("polymarket.GetPrice: %w", err)
	}

	if resp.Price == "" {
		return 0, nil
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("polymarket.GetPrice: parse price %q: %w", resp.Price, err)
	}
	return price, nil
}
