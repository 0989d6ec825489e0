package ports

import "github.com/alejandrodnm/ultratrader/internal/domain"

// Notifier receives structured trading events, best effort.
//
// Delivery is fire-and-forget: implementations must never block trading
// logic, and a delivery failure must never affect trading state.
type Notifier interface {
	// TradeOpened reports a newly opened (or averaged-into) position.
	TradeOpened(pos *domain.Position, res *domain.ExecutionResult)

	// TradeClosed reports a closed position with its realized P&L.
	TradeClosed(marketName, strategy string, price, realizedPnL float64, paper bool)

	// RiskRejected reports a trade intent blocked by the risk gate.
	RiskRejected(strategy, marketName, rule, detail string)

	// SystemAlert reports a general condition (level: info/warn/error).
	SystemAlert(level, message string)
}
