package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

const (
	wsReadTimeout    = 60 * time.Second
	wsPingInterval   = 30 * time.Second
	wsReconnectBase  = 1 * time.Second
	wsReconnectMax   = 30 * time.Second
	wsTradeChannelSz = 64
)

// TradeStream recibe trades del websocket de Polymarket en tiempo real.
// Se reconecta automáticamente con backoff si la conexión se cae.
type TradeStream struct {
	wsURL string
}

// NewTradeStream crea un TradeStream contra el websocket dado.
func NewTradeStream(wsURL string) *TradeStream {
	if wsURL == "" {
		wsURL = "wss://ws-live-data.polymarket.com"
	}
	return &TradeStream{wsURL: wsURL}
}

// Subscribe abre la conexión y devuelve el canal de trades para las wallets
// dadas. El canal se cierra cuando el contexto se cancela.
func (s *TradeStream) Subscribe(ctx context.Context, wallets []string) (<-chan domain.Trade, error) {
	if len(wallets) == 0 {
		return nil, fmt.Errorf("polymarket.Subscribe: no wallets to follow")
	}

	watch := make(map[string]bool, len(wallets))
	for _, w := range wallets {
		watch[strings.ToLower(w)] = true
	}

	out := make(chan domain.Trade, wsTradeChannelSz)
	go s.run(ctx, watch, out)
	return out, nil
}

// run mantiene la conexión viva hasta que el contexto se cancele.
func (s *TradeStream) run(ctx context.Context, watch map[string]bool, out chan<- domain.Trade) {
	defer close(out)

	backoff := wsReconnectBase
	for {
		if ctx.Err() != nil {
			return
		}

		err := s.connectAndRead(ctx, watch, out)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("trade feed disconnected, reconnecting",
			"err", err,
			"backoff", backoff,
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > wsReconnectMax {
			backoff = wsReconnectMax
		}
	}
}

// connectAndRead abre una conexión, se suscribe y lee hasta que falle.
func (s *TradeStream) connectAndRead(ctx context.Context, watch map[string]bool, out chan<- domain.Trade) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sub := map[string]any{
		"action": "subscribe",
		"subscriptions": []map[string]string{
			{"topic": "activity", "type": "trades"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	slog.Info("trade feed connected", "url", s.wsURL, "wallets", len(watch))

	// Cierra la conexión cuando el contexto muere para desbloquear ReadJSON.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go s.pingLoop(ctx, conn, done)

	for {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		var ev wsTradeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if ev.Type != "trades" && ev.Type != "trade" {
			continue
		}
		if !watch[strings.ToLower(ev.ProxyWallet)] {
			continue
		}

		trade := mapWSTrade(ev)
		select {
		case out <- trade:
		default:
			// El consumidor va lento; descartar es mejor que bloquear el read loop.
			slog.Debug("trade feed channel full, dropping trade", "trade_id", trade.ID)
		}
	}
}

func (s *TradeStream) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

func mapWSTrade(ev wsTradeEvent) domain.Trade {
	outcome := domain.OutcomeYes
	if strings.EqualFold(ev.Outcome, "No") {
		outcome = domain.OutcomeNo
	}
	side := domain.SideBuy
	if strings.EqualFold(ev.Side, "SELL") {
		side = domain.SideSell
	}
	return domain.Trade{
		ID:          ev.TransactionHash,
		Wallet:      ev.ProxyWallet,
		ConditionID: ev.ConditionID,
		TokenID:     ev.Asset,
		MarketName:  ev.Title,
		Outcome:     outcome,
		Side:        side,
		Price:       ev.Price,
		Size:        ev.Size * ev.Price,
		Timestamp:   time.Unix(ev.Timestamp, 0).UTC(),
	}
}
