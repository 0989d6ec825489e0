// Package strategy contiene las estrategias de trading. Cada estrategia
// implementa Strategy y corre dentro de un Runner con su propio intervalo;
// un error en un ciclo se loguea y el loop continúa en el siguiente tick.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/portfolio"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/risk"
	"github.com/alejandrodnm/ultratrader/internal/router"
)

// Status es el estado observable de una estrategia.
type Status struct {
	Name    string
	Running bool
	Cycles  int
	Errors  int
	LastRun time.Time
	LastErr string
}

// Strategy define el contrato de una estrategia de trading.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// Interval es la cadencia entre ciclos.
	Interval() time.Duration

	// RunOnce ejecuta un ciclo completo: analizar, entrar, gestionar salidas.
	RunOnce(ctx context.Context) error
}

// MarketSource descubre mercados activos para las estrategias.
type MarketSource interface {
	ActiveMarkets(ctx context.Context, limit int) ([]domain.Market, error)
}

// Deps agrupa las dependencias compartidas de todas las estrategias.
type Deps struct {
	Router    *router.Router
	Gate      *risk.Gate
	Portfolio *portfolio.Portfolio
	Markets   MarketSource
	Notifier  ports.Notifier

	// Capital de referencia para sizing cuando no hay wallet virtual
	// (modos log-only y live).
	Capital float64
}

// Available devuelve el capital disponible para sizing: el balance del
// wallet virtual en paper mode, el capital configurado en el resto.
func (d Deps) Available() float64 {
	if w := d.Router.Wallet(); w != nil {
		return w.Balance()
	}
	return d.Capital
}

// OpenPosition pasa la intención por el risk gate y el router, y registra la
// posición en el portfolio si se ejecuta. Devuelve nil si el gate o el
// router la rechazan.
func (d Deps) OpenPosition(ctx context.Context, req router.BuyRequest, confidence float64) *domain.ExecutionResult {
	req.Notional = d.Gate.PositionSize(d.Available(), confidence, req.Strategy)

	if v := d.Gate.CheckNewPosition(req.Notional); v != nil {
		d.Notifier.RiskRejected(req.Strategy, req.MarketName, string(v.Rule), v.Detail)
		return nil
	}

	res := d.Router.Buy(ctx, req)
	if res == nil || res.Status == domain.ExecDryRun {
		return res
	}

	now := time.Now().UTC()
	pos := &domain.Position{
		ConditionID: req.ConditionID,
		TokenID:     req.TokenID,
		MarketName:  req.MarketName,
		Outcome:     req.Outcome,
		Shares:      res.Shares,
		EntryPrice:  res.Price,
		TotalCost:   res.Shares * res.Price,
		Strategy:    req.Strategy,
		Status:      domain.PositionOpen,
		OpenedAt:    now,
		UpdatedAt:   now,
	}
	d.Portfolio.AddPosition(pos)
	d.Portfolio.RecordTrade(ctx, domain.TradeRecord{
		TradeID:     res.TradeID,
		Strategy:    req.Strategy,
		ConditionID: req.ConditionID,
		TokenID:     req.TokenID,
		MarketName:  req.MarketName,
		Side:        domain.SideBuy,
		Shares:      res.Shares,
		Price:       res.Price,
		Total:       res.Cost,
		Timestamp:   now,
	})
	return res
}

// ClosePosition vende la posición completa y la cierra en el portfolio.
func (d Deps) ClosePosition(ctx context.Context, pos *domain.Position) *domain.ExecutionResult {
	key := pos.Key()
	d.Portfolio.SetStatus(key, domain.PositionSelling)

	res := d.Router.Sell(ctx, key, pos.TokenID, pos.MarketName, pos.Strategy)
	if res == nil {
		// Sin precio o venue caído: la posición sigue abierta, reintento
		// en el siguiente ciclo.
		d.Portfolio.SetStatus(key, domain.PositionOpen)
		return nil
	}
	if res.Status == domain.ExecDryRun {
		d.Portfolio.SetStatus(key, domain.PositionOpen)
		return res
	}

	d.Portfolio.ClosePosition(key, res.Price)
	d.Portfolio.RecordTrade(ctx, domain.TradeRecord{
		TradeID:     res.TradeID,
		Strategy:    pos.Strategy,
		ConditionID: pos.ConditionID,
		TokenID:     pos.TokenID,
		MarketName:  pos.MarketName,
		Side:        domain.SideSell,
		Shares:      pos.Shares,
		Price:       res.Price,
		Total:       pos.Shares * res.Price,
		Timestamp:   time.Now().UTC(),
	})
	return res
}

// Runner ejecuta una estrategia en su propio loop con recuperación de errores.
type Runner struct {
	strat Strategy

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner envuelve una estrategia en un runner.
func NewRunner(s Strategy) *Runner {
	return &Runner{strat: s, status: Status{Name: s.Name()}}
}

// Start lanza el loop. No-op si ya está corriendo.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.status.Running = true

	slog.Info("strategy started", "strategy", r.strat.Name(), "interval", r.strat.Interval())
	go r.run(ctx)
}

// Stop detiene el loop y espera a que el ciclo en curso termine. Idempotente.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.status.Running {
		r.mu.Unlock()
		return
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.status.Running = false
	r.mu.Unlock()
	slog.Info("strategy stopped", "strategy", r.strat.Name())
}

// Status devuelve una copia del estado actual.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.strat.Interval())
	defer ticker.Stop()

	r.cycle(ctx)
	for {
		select {
		case <-ticker.C:
			r.cycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// cycle ejecuta RunOnce capturando panics: una estrategia rota no debe
// tumbar el proceso ni las demás estrategias.
func (r *Runner) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return r.strat.RunOnce(ctx)
	}()

	r.mu.Lock()
	r.status.Cycles++
	r.status.LastRun = time.Now().UTC()
	if err != nil {
		r.status.Errors++
		r.status.LastErr = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		slog.Error("strategy cycle failed", "strategy", r.strat.Name(), "err", err)
	}
}
