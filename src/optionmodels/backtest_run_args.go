package optionmodels

// BacktestRunArgs is the full configuration surface of one backtest run.
// Values come from the YAML config file and/or CLI flag overrides; the core
// applies no defaulting beyond NewBacktestRunArgs.
type BacktestRunArgs struct {
	CSVPath   string `yaml:"csv_path"`
	Expiry    string `yaml:"expiry_date"`
	OutputDir string `yaml:"output_dir"`

	QuoteDateStart string `yaml:"quote_date_start"`
	QuoteDateEnd   string `yaml:"quote_date_end"`
	MaxQuoteDates  int    `yaml:"max_quote_dates"`

	PriceMode PriceMode `yaml:"price_mode"`

	EMASpan             int     `yaml:"ema_span"`
	StdSpan             int     `yaml:"std_span"`
	VolatilitySpan      int     `yaml:"volatility_span"`
	BBSwitch            float64 `yaml:"bb_switch"`
	VolatilityBenchmark float64 `yaml:"volatility_benchmark"`

	DaysToShift int     `yaml:"days_to_shift"`
	TradingFee  float64 `yaml:"trading_fee"`

	ProfitColumn       string  `yaml:"profit_column"`
	RiskFreeRateAnnual float64 `yaml:"risk_free_rate_annual"`
	TradingDays        int     `yaml:"trading_days"`
}

func NewBacktestRunArgs() BacktestRunArgs {
	return BacktestRunArgs{
		CSVPath:             "data/spy_2020_2022.csv",
		Expiry:              "2022-12-30",
		OutputDir:           "outputs",
		PriceMode:           PriceModeMid,
		EMASpan:             10,
		StdSpan:             10,
		VolatilitySpan:      5,
		BBSwitch:            1.5,
		VolatilityBenchmark: 0.01,
		DaysToShift:         1,
		TradingFee:          0.005,
		ProfitColumn:        "profit_entry@t1_exit@t2",
		RiskFreeRateAnnual:  0.04,
		TradingDays:         252,
	}
}
