package notify

import (
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/portfolio"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/wallet"
)

// PrintWalletReport imprime el informe completo del paper wallet:
// resumen, ledger de estrategias, posiciones abiertas, trades recientes y
// stats por estrategia.
func (c *Console) PrintWalletReport(stats wallet.Stats, ledger portfolio.Stats, positions []*domain.Position, trades []domain.TradeRecord, byStrategy []ports.StrategyStats) {
	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  PAPER WALLET REPORT\n")
	fmt.Fprintf(c.out, "========================================================\n\n")

	fmt.Fprintf(c.out, "  Balance:        $%.2f (started $%.2f)\n", stats.Balance, stats.InitialBalance)
	fmt.Fprintf(c.out, "  Realized P&L:   $%.2f\n", stats.RealizedPnL)
	fmt.Fprintf(c.out, "  Unrealized P&L: $%.2f\n", stats.UnrealizedPnL)
	fmt.Fprintf(c.out, "  Total P&L:      $%.2f (%.2f%%)\n", stats.TotalPnL, stats.TotalReturnPct)
	fmt.Fprintf(c.out, "  Open positions: %d\n", stats.OpenPositions)
	fmt.Fprintf(c.out, "  Buys executed:  %d\n", stats.TradeCount)
	fmt.Fprintf(c.out, "  Win rate:       %.1f%%\n", stats.WinRate)

	fmt.Fprintf(c.out, "\n  --- STRATEGY LEDGER ---\n")
	fmt.Fprintf(c.out, "  Open positions: %d ($%.2f invested)\n", ledger.OpenPositions, ledger.TotalInvested)
	fmt.Fprintf(c.out, "  Daily P&L:      $%.2f\n", ledger.DailyPnL)
	fmt.Fprintf(c.out, "  Lifetime P&L:   $%.2f\n", ledger.TotalPnL)
	fmt.Fprintf(c.out, "  Win rate:       %.1f%%\n", ledger.WinRate)

	c.printPositions(positions)
	c.printTrades(trades)
	c.printStrategyStats(byStrategy)
	fmt.Fprintln(c.out)
}

func (c *Console) printPositions(positions []*domain.Position) {
	if len(positions) == 0 {
		fmt.Fprintf(c.out, "\n  No open positions.\n")
		return
	}

	fmt.Fprintf(c.out, "\n  --- OPEN POSITIONS ---\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Market", "Side", "Shares", "Avg", "Mark", "Cost", "PnL", "PnL%", "Strategy")

	for _, p := range positions {
		table.Append(
			compactName(p.MarketName, 35),
			string(p.Outcome),
			fmt.Sprintf("%.2f", p.Shares),
			fmt.Sprintf("$%.4f", p.EntryPrice),
			fmt.Sprintf("$%.4f", p.CurrentPrice),
			fmt.Sprintf("$%.2f", p.TotalCost),
			fmt.Sprintf("$%.2f", p.PnL),
			fmt.Sprintf("%.1f%%", p.PnLPct),
			p.Strategy,
		)
	}
	table.Render()
}

func (c *Console) printTrades(trades []domain.TradeRecord) {
	if len(trades) == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n  --- RECENT TRADES ---\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Side", "Market", "Shares", "Price", "Total", "Balance", "Strategy")

	for _, t := range trades {
		table.Append(
			t.Timestamp.Format("01-02 15:04"),
			string(t.Side),
			compactName(t.MarketName, 35),
			fmt.Sprintf("%.2f", t.Shares),
			fmt.Sprintf("$%.4f", t.Price),
			fmt.Sprintf("$%.2f", t.Total),
			fmt.Sprintf("$%.2f", t.BalanceAfter),
			t.Strategy,
		)
	}
	table.Render()
}

func (c *Console) printStrategyStats(byStrategy []ports.StrategyStats) {
	if len(byStrategy) == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n  --- BY STRATEGY (full archive) ---\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Trades", "Buys", "Sells", "Notional")

	for _, s := range byStrategy {
		table.Append(
			s.Strategy,
			fmt.Sprintf("%d", s.Trades),
			fmt.Sprintf("%d", s.Buys),
			fmt.Sprintf("%d", s.Sells),
			fmt.Sprintf("$%.2f", s.Notional),
		)
	}
	table.Render()
}
