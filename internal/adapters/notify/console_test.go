package notify_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/ultratrader/internal/adapters/notify"
	"github.com/alejandrodnm/ultratrader/internal/domain"
	"github.com/alejandrodnm/ultratrader/internal/portfolio"
	"github.com/alejandrodnm/ultratrader/internal/wallet"
)

func TestTradeOpened_PaperTag(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	pos := &domain.Position{
		MarketName: "Will BTC hit 100k?",
		Outcome:    domain.OutcomeYes,
		Strategy:   "momentum",
	}
	res := &domain.ExecutionResult{
		Shares:  20,
		Price:   0.50,
		Cost:    10,
		Balance: 40,
		Paper:   true,
	}
	c.TradeOpened(pos, res)

	out := buf.String()
	assert.Contains(t, out, "[PAPER]")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "Will BTC hit 100k?")
	assert.Contains(t, out, "bal $40.00")
}

func TestTradeOpened_NilInputsIgnored(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.TradeOpened(nil, nil)

	assert.Empty(t, buf.String())
}

func TestTradeClosed_NegativePnL(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.TradeClosed("Will ETH flip BTC?", "copy", 0.30, -2.50, true)

	out := buf.String()
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "-$2.50")
	assert.Contains(t, out, "copy")
}

func TestRiskRejected(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.RiskRejected("sniper", "Will BTC hit 100k?", "max_open_positions", "max positions reached (5)")

	out := buf.String()
	assert.Contains(t, out, "[RISK]")
	assert.Contains(t, out, "sniper")
	assert.Contains(t, out, "max_open_positions")
}

func TestPrintWalletReport_IncludesLedgerWinRate(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintWalletReport(
		wallet.Stats{Balance: 56, InitialBalance: 50, WinRate: 100},
		portfolio.Stats{OpenPositions: 1, TotalInvested: 10, DailyPnL: 6, TotalPnL: 6, WinRate: 50},
		nil, nil, nil,
	)

	out := buf.String()
	assert.Contains(t, out, "PAPER WALLET REPORT")
	assert.Contains(t, out, "STRATEGY LEDGER")
	assert.Contains(t, out, "Daily P&L:      $6.00")
	assert.Contains(t, out, "Win rate:       50.0%")
}
