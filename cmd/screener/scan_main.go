package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jarair9/Crypto-screener/internal/cache"
	"github.com/jarair9/Crypto-screener/internal/config"
	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/providers"
	"github.com/jarair9/Crypto-screener/internal/screener"
	"github.com/jarair9/Crypto-screener/internal/telemetry/metrics"
)

var supportedIntervals = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

const dispPrecision = time.Millisecond

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one momentum scan and print the ranked matches",
		RunE:  runScan,
	}
	addScanFlags(cmd.Flags())
	return cmd
}

func addScanFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to YAML config (defaults apply when omitted)")
	fs.String("interval", "15m", fmt.Sprintf("Bar interval (%s)", strings.Join(supportedIntervals, "|")))
	fs.String("mode", "below", "Threshold side the indicator must be on (below|above)")
	fs.Float64("threshold", 30, "Indicator threshold (0-100)")
	fs.Int("top-volume", 0, "Keep only the top N instruments by 24h volume (0 disables)")
	fs.Int("recent-days", 0, "Keep only instruments updated within N days (0 disables)")
	fs.Float64("cap-min", -1, "Minimum market cap in USD (enable with cap-max)")
	fs.Float64("cap-max", -1, "Maximum market cap in USD (enable with cap-min)")
	fs.Int("workers", 0, "Worker pool size (0 uses the config value)")
	fs.Int("bars", 0, "Bars fetched per instrument (0 uses the config value)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := buildRequest(cmd, cfg)
	if err != nil {
		return err
	}

	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Scan.Workers = workers
	}

	reg := metrics.NewRegistry(prometheus.NewRegistry())
	engine := buildScreener(cfg, reg)

	report, err := engine.Run(cmd.Context(), req)
	if err != nil {
		if providers.IsCatalogUnavailable(err) {
			fmt.Fprintln(os.Stderr, "catalog could not be obtained; try again later")
		}
		return err
	}

	printReport(report, req)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildRequest(cmd *cobra.Command, cfg *config.Config) (domain.ScanRequest, error) {
	interval, _ := cmd.Flags().GetString("interval")
	modeStr, _ := cmd.Flags().GetString("mode")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	valid := false
	for _, iv := range supportedIntervals {
		if iv == interval {
			valid = true
			break
		}
	}
	if !valid {
		return domain.ScanRequest{}, fmt.Errorf("unsupported interval %q", interval)
	}

	mode := domain.ScanMode(strings.ToLower(modeStr))
	if !mode.Valid() {
		return domain.ScanRequest{}, fmt.Errorf("unsupported mode %q (below|above)", modeStr)
	}

	req := domain.ScanRequest{
		Interval:  interval,
		Mode:      mode,
		Threshold: threshold,
		BarCount:  cfg.Scan.BarCount,
	}
	if bars, _ := cmd.Flags().GetInt("bars"); bars > 0 {
		req.BarCount = bars
	}

	if n, _ := cmd.Flags().GetInt("top-volume"); n > 0 {
		req.Filters.TopVolumeN = &n
	}
	if days, _ := cmd.Flags().GetInt("recent-days"); days > 0 {
		req.Filters.OnlyRecentDays = &days
	}
	capMin, _ := cmd.Flags().GetFloat64("cap-min")
	capMax, _ := cmd.Flags().GetFloat64("cap-max")
	if capMin >= 0 || capMax >= 0 {
		if capMin < 0 || capMax < 0 || capMax < capMin {
			return domain.ScanRequest{}, fmt.Errorf("market-cap range needs cap-min <= cap-max, both set")
		}
		req.Filters.MarketCapRange = &domain.MarketCapSpan{Min: capMin, Max: capMax}
	}

	return req, nil
}

func buildScreener(cfg *config.Config, reg *metrics.Registry) *screener.Screener {
	gecko := providers.NewCoinGeckoClient(providers.CoinGeckoConfig{
		BaseURL:        cfg.Providers.CoinGecko.BaseURL,
		QuoteSuffix:    cfg.Quote,
		RequestTimeout: cfg.Providers.CoinGecko.Timeout(),
		RPS:            cfg.Providers.CoinGecko.RPS,
		Burst:          cfg.Providers.CoinGecko.Burst,
	})
	binance := providers.NewBinanceClient(providers.BinanceConfig{
		BaseURL:        cfg.Providers.Binance.BaseURL,
		QuoteAsset:     cfg.Quote,
		RequestTimeout: cfg.Providers.Binance.Timeout(),
		RPS:            cfg.Providers.Binance.RPS,
		Burst:          cfg.Providers.Binance.Burst,
	})

	opts := []cache.Option{cache.WithMetrics(reg)}
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		opts = append(opts, cache.WithStore(cache.NewRedisStore(client, cfg.Cache.RedisKey, cfg.Cache.TTL())))
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis snapshot store")
	}
	metaCache := cache.NewMetadataCache(gecko, binance, cfg.Cache.TTL(), opts...)

	coordinator := screener.NewCoordinator(binance, cfg.Scan.Workers, cfg.Scan.FetchTimeout(), reg)
	return screener.New(metaCache, coordinator, reg)
}

func printReport(report *screener.ScanReport, req domain.ScanRequest) {
	if report.MetadataDegraded {
		fmt.Println("warning: reference data unavailable; metadata filters matched nothing")
	}
	if failures := report.Stats.Failures(); failures > 0 {
		fmt.Printf("%d of %d instruments could not be scanned\n", failures, report.CandidateCount)
	}

	if len(report.Results) == 0 {
		fmt.Printf("no matching instruments among %d candidates; try relaxing filters\n", report.CandidateCount)
		return
	}

	fmt.Printf("%-12s %14s %8s\n", "SYMBOL", "PRICE", "RSI")
	for _, r := range report.Results {
		fmt.Printf("%-12s %14.4f %8.2f\n", r.InstrumentID, r.Price, r.IndicatorValue)
	}
	fmt.Printf("\n%d matches (mode=%s threshold=%v interval=%s, scan %s in %s)\n",
		len(report.Results), req.Mode, req.Threshold, req.Interval,
		report.ScanID, report.Duration.Round(dispPrecision))
}
