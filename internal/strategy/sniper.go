package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/router"
)

const sniperName = "sniper"

// standingBid es una orden límite en pie, con lo necesario para registrar la
// posición si se llena.
type standingBid struct {
	orderID    string
	tokenID    string
	marketName string
}

// Sniper deja órdenes límite GTC a precio muy bajo en mercados de cripto,
// apostando a que un barrido momentáneo del libro las llene. En live mode
// vigila el libro: una orden que desaparece sin cancelación se trata como
// llenada y la posición resultante se vende al sell target.
type Sniper struct {
	deps Deps
	cfg  config.SniperConfig

	// mercados con orden límite ya colocada, por condition ID
	placed map[string]standingBid
}

// NewSniper crea la estrategia de sniper.
func NewSniper(deps Deps, cfg config.SniperConfig) *Sniper {
	return &Sniper{deps: deps, cfg: cfg, placed: make(map[string]standingBid)}
}

func (s *Sniper) Name() string { return sniperName }

func (s *Sniper) Interval() time.Duration { return 30 * time.Second }

// RunOnce gestiona salidas, reconcilia las órdenes en pie y coloca límites
// en mercados nuevos.
func (s *Sniper) RunOnce(ctx context.Context) error {
	s.manageExits(ctx)

	markets, err := s.deps.Markets.ActiveMarkets(ctx, 100)
	if err != nil {
		return fmt.Errorf("sniper.RunOnce: %w", err)
	}

	active := make(map[string]bool, len(markets))
	for _, mkt := range markets {
		active[mkt.ConditionID] = true
	}
	s.pruneStale(ctx, active)
	s.checkFills(ctx)

	owned := make(map[string]bool)
	for _, pos := range s.deps.Portfolio.PositionsByStrategy(sniperName) {
		owned[pos.ConditionID] = true
	}

	for _, mkt := range markets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.matchesAsset(mkt.Question) {
			continue
		}
		if _, ok := s.placed[mkt.ConditionID]; ok {
			continue
		}
		if owned[mkt.ConditionID] {
			continue
		}
		s.placeBid(ctx, mkt)
	}
	return nil
}

func (s *Sniper) matchesAsset(question string) bool {
	q := strings.ToUpper(question)
	for _, asset := range s.cfg.Assets {
		if strings.Contains(q, strings.ToUpper(asset)) {
			return true
		}
	}
	return false
}

// placeBid deja la orden límite de compra en el lado YES del mercado.
func (s *Sniper) placeBid(ctx context.Context, mkt domain.Market) {
	yes, ok := mkt.TokenFor(domain.OutcomeYes)
	if !ok {
		return
	}

	notional := s.cfg.Price * float64(s.cfg.Shares)
	if v := s.deps.Gate.CheckNewPosition(notional); v != nil {
		s.deps.Notifier.RiskRejected(sniperName, mkt.Question, string(v.Rule), v.Detail)
		return
	}

	res := s.deps.Router.PlaceLimit(ctx, router.LimitRequest{
		TokenID:     yes.TokenID,
		ConditionID: mkt.ConditionID,
		MarketName:  mkt.Question,
		Outcome:     domain.OutcomeYes,
		Side:        domain.SideBuy,
		Price:       s.cfg.Price,
		Shares:      float64(s.cfg.Shares),
		Strategy:    sniperName,
	})
	if res == nil {
		return
	}
	s.placed[mkt.ConditionID] = standingBid{
		orderID:    res.OrderID,
		tokenID:    yes.TokenID,
		marketName: mkt.Question,
	}
}

// checkFills compara las órdenes en pie contra el libro del venue. Una orden
// GTC que ya no aparece se trata como llenada: la posición se registra en el
// portfolio y pasa a gestión de salidas. Solo aplica en live mode — en paper
// las órdenes límite son un artefacto contable sin simulación de fill.
func (s *Sniper) checkFills(ctx context.Context) {
	if s.deps.Router.Mode() != config.ModeLive || len(s.placed) == 0 {
		return
	}
	open, err := s.deps.Router.OpenOrders(ctx)
	if err != nil {
		// Libro inaccesible: no se puede distinguir fill de timeout,
		// reconciliación en el siguiente ciclo.
		slog.Warn("sniper: open orders unavailable", "err", err)
		return
	}
	standing := make(map[string]bool, len(open))
	for _, o := range open {
		standing[o.OrderID] = true
	}

	for conditionID, bid := range s.placed {
		if standing[bid.orderID] {
			continue
		}

		now := time.Now().UTC()
		shares := float64(s.cfg.Shares)
		cost := shares * s.cfg.Price
		pos := &domain.Position{
			ConditionID: conditionID,
			TokenID:     bid.tokenID,
			MarketName:  bid.marketName,
			Outcome:     domain.OutcomeYes,
			Shares:      shares,
			EntryPrice:  s.cfg.Price,
			TotalCost:   cost,
			Strategy:    sniperName,
			Status:      domain.PositionOpen,
			OpenedAt:    now,
			UpdatedAt:   now,
		}
		s.deps.Portfolio.AddPosition(pos)
		s.deps.Portfolio.RecordTrade(ctx, domain.TradeRecord{
			TradeID:     bid.orderID,
			Strategy:    sniperName,
			ConditionID: conditionID,
			TokenID:     bid.tokenID,
			MarketName:  bid.marketName,
			Side:        domain.SideBuy,
			Shares:      shares,
			Price:       s.cfg.Price,
			Total:       cost,
			Timestamp:   now,
		})
		s.deps.Notifier.TradeOpened(pos, &domain.ExecutionResult{
			Status:  domain.ExecLive,
			TradeID: bid.orderID,
			OrderID: bid.orderID,
			Price:   s.cfg.Price,
			Shares:  shares,
			Cost:    cost,
		})
		delete(s.placed, conditionID)
		slog.Info("sniper limit filled",
			"market", bid.marketName, "shares", shares, "price", s.cfg.Price)
	}
}

// pruneStale cancela y descarta las órdenes de mercados que ya no están
// activos; sin esto el tracking crece sin límite en procesos de larga vida.
func (s *Sniper) pruneStale(ctx context.Context, active map[string]bool) {
	for conditionID, bid := range s.placed {
		if active[conditionID] {
			continue
		}
		if _, err := s.deps.Router.CancelOrder(ctx, bid.orderID); err != nil {
			// Reintento en el siguiente ciclo.
			slog.Warn("sniper: cancel failed", "order", bid.orderID, "err", err)
			continue
		}
		delete(s.placed, conditionID)
		slog.Info("sniper bid pruned", "market", bid.marketName, "order", bid.orderID)
	}
}

// manageExits vende posiciones del sniper que alcanzan el sell target.
func (s *Sniper) manageExits(ctx context.Context) {
	for _, pos := range s.deps.Portfolio.PositionsByStrategy(sniperName) {
		if pos.CurrentPrice <= 0 {
			continue
		}
		if pos.CurrentPrice >= s.cfg.SellTarget {
			s.deps.ClosePosition(ctx, pos)
		}
	}
}
