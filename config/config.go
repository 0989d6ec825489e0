package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Mode selecciona cómo se ejecutan las órdenes.
type Mode string

const (
	ModeLogOnly Mode = "log-only" // simula éxito, no toca estado
	ModePaper   Mode = "paper"    // wallet virtual a precios reales
	ModeLive    Mode = "live"     // órdenes reales en el venue
)

// Config es la configuración completa del trader.
type Config struct {
	Trading    TradingConfig    `yaml:"trading"`
	Risk       RiskConfig       `yaml:"risk"`
	API        APIConfig        `yaml:"api"`
	Strategies StrategiesConfig `yaml:"strategies"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// TradingConfig controla el modo de ejecución y el wallet virtual.
type TradingConfig struct {
	Mode                 Mode    `yaml:"mode"`                   // log-only | paper | live
	StartingBalance      float64 `yaml:"starting_balance"`       // USDC virtual inicial
	MarkIntervalSeconds  int     `yaml:"mark_interval_seconds"`  // refresco de precios de posiciones abiertas
	PrivateKey           string  `yaml:"-"`                      // solo desde env
	FunderAddress        string  `yaml:"-"`
	APIKey               string  `yaml:"-"`
	APISecret            string  `yaml:"-"`
	APIPassphrase        string  `yaml:"-"`
}

// RiskConfig son los límites que el risk gate aplica a cada trade.
type RiskConfig struct {
	MinTradeSize     float64 `yaml:"min_trade_size"`     // dust threshold en USDC
	MaxPositionUSDC  float64 `yaml:"max_position_usdc"`  // cap por posición
	MaxOpenPositions int     `yaml:"max_open_positions"`
	DailyLossLimit   float64 `yaml:"daily_loss_limit"` // kill-switch diario
}

// APIConfig contiene los base URLs de las APIs del venue.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
	DataBase  string `yaml:"data_base"`
	WSBase    string `yaml:"ws_base"`
}

// StrategiesConfig agrupa los parámetros por estrategia.
type StrategiesConfig struct {
	Momentum MomentumConfig `yaml:"momentum"`
	Copy     CopyConfig     `yaml:"copy"`
	MM       MMConfig       `yaml:"mm"`
	Sniper   SniperConfig   `yaml:"sniper"`
}

// MomentumConfig controla la estrategia de momentum sobre mercados cripto.
type MomentumConfig struct {
	Enabled         bool    `yaml:"enabled"`
	IntervalSeconds int     `yaml:"interval_seconds"`
	ProfitTargetPct float64 `yaml:"profit_target_pct"`
	CutLossPct      float64 `yaml:"cut_loss_pct"`
	MinStrength     float64 `yaml:"min_strength"` // señal mínima para entrar [0,1]
}

// CopyConfig controla el copy-trading de wallets observadas.
type CopyConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Wallets           []string `yaml:"wallets"` // addresses a copiar
	SizePercent       float64  `yaml:"size_percent"`
	AutoSellProfitPct float64  `yaml:"auto_sell_profit_pct"`
}

// MMConfig controla el market making por slots de 5 minutos.
type MMConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Assets          []string `yaml:"assets"` // BTC, ETH...
	TradeSize       float64  `yaml:"trade_size"`
	SellPrice       float64  `yaml:"sell_price"`
	CutLossSeconds  int      `yaml:"cut_loss_seconds"`
	SlotMinutes     int      `yaml:"slot_minutes"`
}

// SniperConfig controla las órdenes límite a precio bajo.
type SniperConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Assets     []string `yaml:"assets"`
	Price      float64  `yaml:"price"`  // precio límite, ej. 0.02
	Shares     int      `yaml:"shares"` // shares por orden
	SellTarget float64  `yaml:"sell_target"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // documentos JSON del wallet/portfolio
	DSN     string `yaml:"dsn"`      // archivo SQLite del trade archive, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Cascade: env vars > .env > YAML > defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		// sin archivo: solo env + defaults
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// MarkInterval devuelve el intervalo de mark-to-market como time.Duration.
func (c *Config) MarkInterval() time.Duration {
	return time.Duration(c.Trading.MarkIntervalSeconds) * time.Second
}

// Validate devuelve los errores de configuración fatales para el modo actual.
// Solo el modo live exige credenciales.
func (c *Config) Validate() []string {
	var errs []string
	switch c.Trading.Mode {
	case ModeLogOnly, ModePaper, ModeLive:
	default:
		errs = append(errs, fmt.Sprintf("unknown trading mode %q", c.Trading.Mode))
	}
	if c.Trading.Mode == ModeLive {
		if c.Trading.PrivateKey == "" {
			errs = append(errs, "POLYMARKET_PRIVATE_KEY is required in live mode")
		}
		if c.Trading.FunderAddress == "" {
			errs = append(errs, "POLYMARKET_FUNDER_ADDRESS is required in live mode")
		}
		if c.Trading.APIKey == "" {
			errs = append(errs, "POLYMARKET_API_KEY is required in live mode")
		}
	}
	return errs
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADING_MODE"); v != "" {
		cfg.Trading.Mode = Mode(v)
	}
	if v, ok := envFloat("STARTING_BALANCE"); ok {
		cfg.Trading.StartingBalance = v
	}
	if v, ok := envFloat("MAX_POSITION_USDC"); ok {
		cfg.Risk.MaxPositionUSDC = v
	}
	if v, ok := envFloat("DAILY_LOSS_LIMIT"); ok {
		cfg.Risk.DailyLossLimit = v
	}
	if v := os.Getenv("MAX_OPEN_POSITIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Risk.MaxOpenPositions = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	cfg.Trading.PrivateKey = os.Getenv("POLYMARKET_PRIVATE_KEY")
	cfg.Trading.FunderAddress = os.Getenv("POLYMARKET_FUNDER_ADDRESS")
	cfg.Trading.APIKey = os.Getenv("POLYMARKET_API_KEY")
	cfg.Trading.APISecret = os.Getenv("POLYMARKET_SECRET")
	cfg.Trading.APIPassphrase = os.Getenv("POLYMARKET_PASSPHRASE")
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Trading.Mode == "" {
		cfg.Trading.Mode = ModePaper
	}
	if cfg.Trading.StartingBalance <= 0 {
		cfg.Trading.StartingBalance = 50
	}
	if cfg.Trading.MarkIntervalSeconds <= 0 {
		cfg.Trading.MarkIntervalSeconds = 30
	}
	if cfg.Risk.MinTradeSize <= 0 {
		cfg.Risk.MinTradeSize = 0.01
	}
	if cfg.Risk.MaxPositionUSDC <= 0 {
		cfg.Risk.MaxPositionUSDC = 50
	}
	if cfg.Risk.MaxOpenPositions <= 0 {
		cfg.Risk.MaxOpenPositions = 5
	}
	if cfg.Risk.DailyLossLimit <= 0 {
		cfg.Risk.DailyLossLimit = 20
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.WSBase == "" {
		cfg.API.WSBase = "wss://ws-live-data.polymarket.com"
	}
	if cfg.Strategies.Momentum.IntervalSeconds <= 0 {
		cfg.Strategies.Momentum.IntervalSeconds = 60
	}
	if cfg.Strategies.Momentum.ProfitTargetPct <= 0 {
		cfg.Strategies.Momentum.ProfitTargetPct = 20
	}
	if cfg.Strategies.Momentum.CutLossPct <= 0 {
		cfg.Strategies.Momentum.CutLossPct = 50
	}
	if cfg.Strategies.Momentum.MinStrength <= 0 {
		cfg.Strategies.Momentum.MinStrength = 0.6
	}
	if cfg.Strategies.Copy.SizePercent <= 0 {
		cfg.Strategies.Copy.SizePercent = 10
	}
	if cfg.Strategies.Copy.AutoSellProfitPct <= 0 {
		cfg.Strategies.Copy.AutoSellProfitPct = 20
	}
	if len(cfg.Strategies.MM.Assets) == 0 {
		cfg.Strategies.MM.Assets = []string{"BTC", "ETH"}
	}
	if cfg.Strategies.MM.TradeSize <= 0 {
		cfg.Strategies.MM.TradeSize = 10
	}
	if cfg.Strategies.MM.SellPrice <= 0 {
		cfg.Strategies.MM.SellPrice = 0.60
	}
	if cfg.Strategies.MM.CutLossSeconds <= 0 {
		cfg.Strategies.MM.CutLossSeconds = 120
	}
	if cfg.Strategies.MM.SlotMinutes <= 0 {
		cfg.Strategies.MM.SlotMinutes = 5
	}
	if len(cfg.Strategies.Sniper.Assets) == 0 {
		cfg.Strategies.Sniper.Assets = []string{"BTC", "ETH", "SOL"}
	}
	if cfg.Strategies.Sniper.Price <= 0 {
		cfg.Strategies.Sniper.Price = 0.02
	}
	if cfg.Strategies.Sniper.Shares <= 0 {
		cfg.Strategies.Sniper.Shares = 50
	}
	if cfg.Strategies.Sniper.SellTarget <= 0 {
		cfg.Strategies.Sniper.SellTarget = 0.15
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "ultratrader.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
