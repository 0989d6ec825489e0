package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/ultratrader/internal/domain"
)

// Console implementa ports.Notifier escribiendo eventos a stdout.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// TradeOpened imprime una posición recién abierta (o promediada).
func (c *Console) TradeOpened(pos *domain.Position, res *domain.ExecutionResult) {
	if pos == nil || res == nil {
		return
	}
	tag := "LIVE"
	if res.Paper {
		tag = "PAPER"
	}
	fmt.Fprintf(c.out, "[%s][%s] BUY %s %s | %.2f shares @ $%.4f = $%.2f | %s",
		timestamp(), tag,
		compactName(pos.MarketName, 40), pos.Outcome,
		res.Shares, res.Price, res.Cost, pos.Strategy)
	if res.Paper {
		fmt.Fprintf(c.out, " | bal $%.2f", res.Balance)
	}
	fmt.Fprintln(c.out)
}

// TradeClosed imprime un cierre de posición con su P&L realizado.
func (c *Console) TradeClosed(marketName, strategy string, price, realizedPnL float64, paper bool) {
	tag := "LIVE"
	if paper {
		tag = "PAPER"
	}
	icon := "+"
	if realizedPnL < 0 {
		icon = "-"
	}
	fmt.Fprintf(c.out, "[%s][%s] SELL %s @ $%.4f | P&L %s$%.2f | %s\n",
		timestamp(), tag,
		compactName(marketName, 40), price,
		icon, abs(realizedPnL), strategy)
}

// RiskRejected imprime un intento de trade bloqueado por el risk gate.
func (c *Console) RiskRejected(strategy, marketName, rule, detail string) {
	fmt.Fprintf(c.out, "[%s][RISK] %s blocked on %s: %s (%s)\n",
		timestamp(), strategy, compactName(marketName, 40), rule, detail)
}

// SystemAlert imprime una condición general del sistema.
func (c *Console) SystemAlert(level, message string) {
	fmt.Fprintf(c.out, "[%s][%s] %s\n", timestamp(), strings.ToUpper(level), message)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
