package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/ultratrader/config"
	"github.com/alejandrodnm/ultratrader/internal/adapters/notify"
	"github.com/alejandrodnm/ultratrader/internal/adapters/polymarket"
	"github.com/alejandrodnm/ultratrader/internal/adapters/storage"
	"github.com/alejandrodnm/ultratrader/internal/portfolio"
	"github.com/alejandrodnm/ultratrader/internal/ports"
	"github.com/alejandrodnm/ultratrader/internal/risk"
	"github.com/alejandrodnm/ultratrader/internal/router"
	"github.com/alejandrodnm/ultratrader/internal/strategy"
	"github.com/alejandrodnm/ultratrader/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	report := flag.Bool("report", false, "print the paper wallet report and exit")
	resetWallet := flag.Bool("reset-wallet", false, "reset the paper wallet to the starting balance")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			slog.Error("invalid config", "err", e)
		}
		os.Exit(1)
	}

	slog.Info("ultratrader starting",
		"config", *configPath,
		"mode", cfg.Trading.Mode,
		"starting_balance", cfg.Trading.StartingBalance,
	)

	store, err := storage.NewJSONStore(cfg.Storage.DataDir)
	if err != nil {
		slog.Error("failed to open state store", "err", err, "dir", cfg.Storage.DataDir)
		os.Exit(1)
	}

	archive, err := storage.NewTradeArchive(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open trade archive", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer archive.Close()

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.DataBase,
		polymarket.Credentials{
			APIKey:        cfg.Trading.APIKey,
			APISecret:     cfg.Trading.APISecret,
			APIPassphrase: cfg.Trading.APIPassphrase,
			FunderAddress: cfg.Trading.FunderAddress,
		})

	notifier := notify.NewConsole()

	var w *wallet.Wallet
	if cfg.Trading.Mode == config.ModePaper {
		w = wallet.New(store, archive, cfg.Trading.StartingBalance)
		if *resetWallet {
			w.Reset(cfg.Trading.StartingBalance)
			slog.Info("paper wallet reset", "balance", cfg.Trading.StartingBalance)
		}
	}

	book := portfolio.New(store, archive)

	if *report {
		printReport(context.Background(), w, book, archive, notifier)
		return
	}

	gate := risk.NewGate(cfg.Risk, cfg.Strategies, book)
	r := router.New(cfg.Trading.Mode, w, client, client, notifier)

	deps := strategy.Deps{
		Router:    r,
		Gate:      gate,
		Portfolio: book,
		Markets:   client,
		Notifier:  notifier,
		Capital:   cfg.Trading.StartingBalance,
	}

	var runners []*strategy.Runner
	if cfg.Strategies.Momentum.Enabled {
		runners = append(runners, strategy.NewRunner(strategy.NewMomentum(deps, cfg.Strategies.Momentum)))
	}
	if cfg.Strategies.Copy.Enabled {
		feed := polymarket.NewTradeStream(cfg.API.WSBase)
		runners = append(runners, strategy.NewRunner(strategy.NewCopyTrade(deps, cfg.Strategies.Copy, feed)))
	}
	if cfg.Strategies.MM.Enabled {
		runners = append(runners, strategy.NewRunner(strategy.NewMarketMaker(deps, cfg.Strategies.MM)))
	}
	if cfg.Strategies.Sniper.Enabled {
		runners = append(runners, strategy.NewRunner(strategy.NewSniper(deps, cfg.Strategies.Sniper)))
	}
	if len(runners) == 0 {
		slog.Error("no strategies enabled — nothing to run")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	marks := router.NewMarkLoop(r, book, cfg.MarkInterval())
	marks.Start(ctx)

	for _, runner := range runners {
		runner.Start(ctx)
	}
	notifier.SystemAlert("info", "trader running — ctrl-c to stop")

	<-ctx.Done()

	for _, runner := range runners {
		runner.Stop()
	}
	marks.Stop()

	slog.Info("ultratrader stopped cleanly")
}

// printReport imprime el informe del paper wallet.
func printReport(ctx context.Context, w *wallet.Wallet, book *portfolio.Portfolio, archive ports.TradeArchive, notifier *notify.Console) {
	if w == nil {
		slog.Error("report requires paper mode (TRADING_MODE=paper)")
		os.Exit(1)
	}
	byStrategy, err := archive.StatsByStrategy(ctx)
	if err != nil {
		slog.Warn("could not read strategy stats", "err", err)
	}
	notifier.PrintWalletReport(w.GetStats(), book.GetStats(), w.OpenPositions(), w.RecentTrades(20), byStrategy)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
