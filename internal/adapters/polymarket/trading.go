package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// PlaceMarketOrder envía una orden de mercado FOK por el notional dado.
// Devuelve nil receipt si el venue rechaza la orden — el caller decide.
func (c *Client) PlaceMarketOrder(ctx context.Context, tokenID string, side domain.Side, notional float64) (*domain.OrderReceipt, error) {
	req := orderRequest{
		TokenID:   tokenID,
		Side:      string(side),
		Size:      notional,
		OrderType: "FOK",
		Owner:     c.creds.FunderAddress,
	}
	return c.placeOrder(ctx, req)
}

// PlaceLimitOrder envía una orden límite GTC.
func (c *Client) PlaceLimitOrder(ctx context.Context, tokenID string, side domain.Side, price, shares float64) (*domain.OrderReceipt, error) {
	req := orderRequest{
		TokenID:   tokenID,
		Side:      string(side),
		Size:      shares,
		Price:     price,
		OrderType: "GTC",
		Owner:     c.creds.FunderAddress,
	}
	return c.placeOrder(ctx, req)
}

// placeOrder hace el POST de la orden SIN retries: un reintento a ciegas
// tras un error de red podría duplicar la ejecución.
func (c *Client) placeOrder(ctx context.Context, req orderRequest) (*domain.OrderReceipt, error) {
	var resp orderResponse
	if err := c.postOnce(ctx, c.clobLimiter, c.clobBase+"/order", req, &resp); err != nil {
		return nil, fmt.Errorf("polymarket.placeOrder: %w", err)
	}

	if !resp.Success {
		slog.Warn("order rejected by venue",
			"token_id", req.TokenID,
			"side", req.Side,
			"error", resp.ErrorMsg,
		)
		return nil, nil
	}

	price := req.Price
	if resp.TakingAmt != "" && resp.MakingAmt != "" {
		// Precio real = taking/making para órdenes de mercado.
		taking, err1 := strconv.ParseFloat(resp.TakingAmt, 64)
		making, err2 := strconv.ParseFloat(resp.MakingAmt, 64)
		if err1 == nil && err2 == nil && taking > 0 {
			price = making / taking
		}
	}

	return &domain.OrderReceipt{
		OrderID: resp.OrderID,
		Status:  resp.Status,
		Price:   price,
		Size:    req.Size,
	}, nil
}

// CancelOrder cancela una orden por ID. Devuelve true si el venue la canceló.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	body := map[string]string{"orderID": orderID}
	var resp cancelResponse
	if err := c.post(ctx, c.clobLimiter, c.clobBase+"/order/cancel", body, &resp); err != nil {
		return false, fmt.Errorf("polymarket.CancelOrder: %w", err)
	}
	for _, id := range resp.Canceled {
		if id == orderID {
			return true, nil
		}
	}
	if reason, ok := resp.NotCanceled[orderID]; ok {
		slog.Warn("order not canceled", "order_id", orderID, "reason", reason)
	}
	return false, nil
}

// GetOpenOrders devuelve las órdenes abiertas de la cuenta.
func (c *Client) GetOpenOrders(ctx context.Context) ([]domain.OrderReceipt, error) {
	var resp []openOrder
	if err := c.get(ctx, c.clobLimiter, c.clobBase+"/orders", &resp); err != nil {
		return nil, fmt.Errorf("polymarket.GetOpenOrders: %w", err)
	}

	receipts := make([]domain.OrderReceipt, 0, len(resp))
	for _, o := range resp {
		price, _ := strconv.ParseFloat(o.Price, 64)
		size, _ := strconv.ParseFloat(o.OriginalSize, 64)
		receipts = append(receipts, domain.OrderReceipt{
			OrderID: o.ID,
			Status:  "OPEN",
			Price:   price,
			Size:    size,
		})
	}
	return receipts, nil
}
