package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/yzhao-quant/varswap/src/backtest"
	"github.com/yzhao-quant/varswap/src/data"
	"github.com/yzhao-quant/varswap/src/metrics"
	"github.com/yzhao-quant/varswap/src/optionmodels"
	"github.com/yzhao-quant/varswap/src/utils"
)

type cliFlags struct {
	ConfigPath string
	GoEnv      string
	LogToFile  bool

	CSVPath   string
	Expiry    string
	OutputDir string
	PriceMode string

	QuoteDateStart string
	QuoteDateEnd   string
	MaxQuoteDates  int

	EMASpan             int
	StdSpan             int
	VolatilitySpan      int
	BBSwitch            float64
	VolatilityBenchmark float64

	DaysToShift int
	TradingFee  float64

	ProfitColumn       string
	RiskFreeRateAnnual float64
	TradingDays        int
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the variance replication backtest and portfolio metrics for one expiry",
	Run: func(cmd *cobra.Command, _ []string) {
		args, err := resolveArgs(cmd)
		if err != nil {
			log.Fatalf("error resolving run arguments: %v", err)
		}

		if err := run(args, flags.GoEnv, flags.LogToFile); err != nil {
			log.Fatalf("error running backtest: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Path to a YAML run configuration file.")
	rootCmd.PersistentFlags().StringVar(&flags.GoEnv, "go-env", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().BoolVar(&flags.LogToFile, "log-to-file", false, "Also write logs to a .log file in the output directory.")

	rootCmd.PersistentFlags().StringVar(&flags.CSVPath, "csv-path", "", "Options chain CSV path (override).")
	rootCmd.PersistentFlags().StringVar(&flags.Expiry, "expiry-date", "", "Expiry date YYYY-MM-DD (override).")
	rootCmd.PersistentFlags().StringVar(&flags.OutputDir, "output-dir", "", "Output directory (override).")
	rootCmd.PersistentFlags().StringVar(&flags.PriceMode, "price-mode", "", "Pricing mode: last, bid, ask, mid or last_adj (override).")

	rootCmd.PersistentFlags().StringVar(&flags.QuoteDateStart, "quote-date-start", "", "Keep quote dates at or after YYYY-MM-DD (override).")
	rootCmd.PersistentFlags().StringVar(&flags.QuoteDateEnd, "quote-date-end", "", "Keep quote dates at or before YYYY-MM-DD (override).")
	rootCmd.PersistentFlags().IntVar(&flags.MaxQuoteDates, "max-quote-dates", 0, "Keep only the first N quote dates (override).")

	rootCmd.PersistentFlags().IntVar(&flags.EMASpan, "ema-span", 0, "EMA span for the signal (override).")
	rootCmd.PersistentFlags().IntVar(&flags.StdSpan, "std-span", 0, "Rolling std span for the signal bands (override).")
	rootCmd.PersistentFlags().IntVar(&flags.VolatilitySpan, "volatility-span", 0, "Volatility gauge span (override).")
	rootCmd.PersistentFlags().Float64Var(&flags.BBSwitch, "bb-switch", 0, "Band half-width multiplier (override).")
	rootCmd.PersistentFlags().Float64Var(&flags.VolatilityBenchmark, "volatility-benchmark", 0, "Quiet-market threshold for new entries (override).")

	rootCmd.PersistentFlags().IntVar(&flags.DaysToShift, "days-to-shift", 0, "Calendar days between entry and exit (override).")
	rootCmd.PersistentFlags().Float64Var(&flags.TradingFee, "trading-fee", 0, "Proportional trading fee (override).")

	rootCmd.PersistentFlags().StringVar(&flags.ProfitColumn, "profit-col", "", "Return column consumed by the portfolio metrics (override).")
	rootCmd.PersistentFlags().Float64Var(&flags.RiskFreeRateAnnual, "risk-free-rate", 0, "Annual risk-free rate (override).")
	rootCmd.PersistentFlags().IntVar(&flags.TradingDays, "trading-days", 0, "Trading days per year (override).")

	cobra.CheckErr(rootCmd.Execute())
}

// resolveArgs layers the configuration: built-in defaults, then the YAML
// config file, then any flag the user explicitly set.
func resolveArgs(cmd *cobra.Command) (optionmodels.BacktestRunArgs, error) {
	args := optionmodels.NewBacktestRunArgs()

	if flags.ConfigPath != "" {
		raw, err := os.ReadFile(flags.ConfigPath)
		if err != nil {
			return args, fmt.Errorf("error reading config file: %v", err)
		}

		if err := yaml.Unmarshal(raw, &args); err != nil {
			return args, fmt.Errorf("error parsing config file: %v", err)
		}
	}

	set := cmd.Flags().Changed

	if set("csv-path") {
		args.CSVPath = flags.CSVPath
	}
	if set("expiry-date") {
		args.Expiry = flags.Expiry
	}
	if set("output-dir") {
		args.OutputDir = flags.OutputDir
	}
	if set("price-mode") {
		args.PriceMode = optionmodels.PriceMode(flags.PriceMode)
	}
	if set("quote-date-start") {
		args.QuoteDateStart = flags.QuoteDateStart
	}
	if set("quote-date-end") {
		args.QuoteDateEnd = flags.QuoteDateEnd
	}
	if set("max-quote-dates") {
		args.MaxQuoteDates = flags.MaxQuoteDates
	}
	if set("ema-span") {
		args.EMASpan = flags.EMASpan
	}
	if set("std-span") {
		args.StdSpan = flags.StdSpan
	}
	if set("volatility-span") {
		args.VolatilitySpan = flags.VolatilitySpan
	}
	if set("bb-switch") {
		args.BBSwitch = flags.BBSwitch
	}
	if set("volatility-benchmark") {
		args.VolatilityBenchmark = flags.VolatilityBenchmark
	}
	if set("days-to-shift") {
		args.DaysToShift = flags.DaysToShift
	}
	if set("trading-fee") {
		args.TradingFee = flags.TradingFee
	}
	if set("profit-col") {
		args.ProfitColumn = flags.ProfitColumn
	}
	if set("risk-free-rate") {
		args.RiskFreeRateAnnual = flags.RiskFreeRateAnnual
	}
	if set("trading-days") {
		args.TradingDays = flags.TradingDays
	}

	return args, nil
}

func setupLogging(outputDir string, logToFile bool, timestamp string) (io.Closer, error) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if !logToFile {
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %v", err)
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("run_%s.log", timestamp))
	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("error creating log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, f))

	return f, nil
}

func formatMetric(f metrics.Float) string {
	v := float64(f)
	if math.IsNaN(v) {
		return "NaN"
	}

	return fmt.Sprintf("%.6f", v)
}

func printMetricsTable(m metrics.PortfolioMetrics, profitColumn string) {
	fmt.Printf("Portfolio Metrics (%s):\n", profitColumn)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	table.Append([]string{"mean_daily_return", formatMetric(m.MeanDailyReturn)})
	table.Append([]string{"std_daily_return", formatMetric(m.StdDailyReturn)})
	table.Append([]string{"sharpe_annualized", formatMetric(m.SharpeAnnualized)})
	table.Append([]string{"sortino_annualized", formatMetric(m.SortinoAnnualized)})
	table.Append([]string{"max_drawdown", formatMetric(m.MaxDrawdown)})
	table.Append([]string{"win_rate_trade_days", formatMetric(m.WinRateTradeDays)})
	table.Append([]string{"trade_attempt", formatMetric(m.TradeAttempt)})
	table.Append([]string{"exposure", formatMetric(m.Exposure)})
	table.Append([]string{"signal_turnover_yearly", formatMetric(m.SignalTurnoverYearly)})
	table.Append([]string{"final_nav", formatMetric(m.FinalNAV)})

	table.Render()
}

func printStationarity(diag metrics.StationarityDiagnostics) {
	log.Info("--- Stationarity Diagnostics (ADF + Half-life) ---")

	for _, entry := range []struct {
		name string
		res  metrics.StationarityResult
	}{
		{"raw", diag.Raw},
		{"diff", diag.Diff},
		{"zscore", diag.ZScore},
	} {
		log.Infof("%s | n=%d | adf_stat=%s | half_life=%s", entry.name, entry.res.NumObs, formatMetric(entry.res.ADFStat), formatMetric(entry.res.HalfLife))
	}

	if diag.Note != "" {
		log.Warnf("Stationarity note: %s", diag.Note)
	}
}

func writeResultsCSV(rows []optionmodels.BacktestRow, path string) error {
	dtos := make([]*optionmodels.BacktestRowDTO, len(rows))
	for i := range rows {
		dtos[i] = rows[i].ToDTO()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating results file: %v", err)
	}

	defer f.Close()

	if err := gocsv.MarshalFile(&dtos, f); err != nil {
		return fmt.Errorf("error marshalling results: %v", err)
	}

	return nil
}

func writeNavCSV(rows []optionmodels.BacktestRow, nav []float64, path string) error {
	dtos := make([]*optionmodels.NavRowDTO, len(nav))
	for i := range nav {
		quoteDate := ""
		if i < len(rows) {
			quoteDate = rows[i].QuoteDate
		}

		dtos[i] = &optionmodels.NavRowDTO{QuoteDate: quoteDate, NAV: nav[i]}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating nav file: %v", err)
	}

	defer f.Close()

	if err := gocsv.MarshalFile(&dtos, f); err != nil {
		return fmt.Errorf("error marshalling nav: %v", err)
	}

	return nil
}

func run(args optionmodels.BacktestRunArgs, goEnv string, logToFile bool) error {
	start := time.Now()
	timestamp := start.Format("20060102_150405")

	closer, err := setupLogging(args.OutputDir, logToFile, timestamp)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	runID := uuid.New()
	log.Infof("Run started | run_id=%s", runID)

	if err := utils.InitEnvironmentVariables(goEnv); err != nil {
		return fmt.Errorf("error initializing environment variables: %v", err)
	}

	printer := message.NewPrinter(language.English)

	log.Infof("Loading CSV: %s", args.CSVPath)
	ds, err := data.LoadOptionsCSV(args.CSVPath)
	if err != nil {
		return err
	}
	log.Infof("CSV loaded: %s rows", printer.Sprintf("%d", ds.Len()))

	if args.QuoteDateStart != "" {
		before := ds.Len()
		ds = ds.FilterQuoteDates(args.QuoteDateStart, "")
		log.Infof("Filter quote_date_start=%s | %d -> %d rows", args.QuoteDateStart, before, ds.Len())
	}

	if args.QuoteDateEnd != "" {
		before := ds.Len()
		ds = ds.FilterQuoteDates("", args.QuoteDateEnd)
		log.Infof("Filter quote_date_end=%s | %d -> %d rows", args.QuoteDateEnd, before, ds.Len())
	}

	if args.MaxQuoteDates > 0 {
		before := ds.Len()
		ds = ds.LimitQuoteDates(args.MaxQuoteDates)
		log.Infof("Filter max_quote_dates=%d | %d -> %d rows", args.MaxQuoteDates, before, ds.Len())
	}

	log.Infof("Running backtest for expiry_date=%s ...", args.Expiry)
	rows, err := backtest.Run(ds, args)
	if err != nil {
		return err
	}
	log.Infof("Backtest complete. Rows: %d", len(rows))

	if err := os.MkdirAll(args.OutputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %v", err)
	}

	resultsPath := filepath.Join(args.OutputDir, fmt.Sprintf("results_%s.csv", timestamp))
	if err := writeResultsCSV(rows, resultsPath); err != nil {
		return err
	}
	log.Infof("Saved results: %s", resultsPath)

	m, nav, err := metrics.FullPortfolioMetrics(rows, args.ProfitColumn, args.RiskFreeRateAnnual, args.TradingDays)
	if err != nil {
		return err
	}

	log.Infof("--- Portfolio Metrics (%s) ---", args.ProfitColumn)
	printMetricsTable(m, args.ProfitColumn)
	printStationarity(m.Stationarity)

	metricsPath := filepath.Join(args.OutputDir, fmt.Sprintf("portfolio_metrics_%s.json", timestamp))
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling metrics: %v", err)
	}

	if err := os.WriteFile(metricsPath, raw, 0644); err != nil {
		return fmt.Errorf("error writing metrics file: %v", err)
	}
	log.Infof("Saved portfolio metrics: %s", metricsPath)

	navPath := filepath.Join(args.OutputDir, fmt.Sprintf("nav_%s.csv", timestamp))
	if err := writeNavCSV(rows, nav, navPath); err != nil {
		return err
	}
	log.Infof("Saved NAV: %s", navPath)

	log.Infof("Done in %.2fs", time.Since(start).Seconds())

	return nil
}
