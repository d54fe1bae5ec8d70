// Command scan runs a single market scan from the terminal and prints
// the ranked results. It talks straight to the exchange; no Redis or
// SQLite required.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"marketscan/internal/marketdata/binance"
	"marketscan/internal/model"
	"marketscan/internal/scanner"
	"marketscan/internal/scoring"
)

func main() {
	var (
		timeframe   = flag.String("timeframe", "1h", "candle timeframe (15m, 1h, 4h, 1d, 1w)")
		minScore    = flag.Float64("min-score", 2, "minimum composite score")
		limit       = flag.Int("limit", 25, "max results (0 = unlimited)")
		liquidity   = flag.Float64("min-liquidity", 0, "24h quote volume floor")
		stables     = flag.Bool("exclude-stablecoins", true, "skip stablecoin pairs")
		quote       = flag.String("quote", "USDT", "quote asset for the symbol universe")
		workers     = flag.Int("workers", 8, "concurrent analysis workers")
		scoringPath = flag.String("scoring-config", "", "YAML scoring config override")
		asJSON      = flag.Bool("json", false, "print the full scan as JSON")
	)
	flag.Parse()

	tf, err := model.ParseTimeframe(*timeframe)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	cfg, err := scoring.LoadConfig(*scoringPath)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}
	engine, err := scoring.NewEngine(cfg)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	exchange := binance.New(os.Getenv("SCAN_BINANCE_API_KEY"), os.Getenv("SCAN_BINANCE_SECRET_KEY"),
		binance.WithQuoteAsset(*quote))
	sc := scanner.New(engine, exchange, exchange, scanner.WithWorkers(*workers))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scan, err := sc.Scan(ctx, model.ScanFilters{
		Timeframe:          tf,
		MinScore:           *minScore,
		ExcludeStablecoins: *stables,
		MinLiquidity:       *liquidity,
		Limit:              *limit,
	})
	if err != nil {
		log.Fatalf("scan: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(scan)
		return
	}
	printTable(scan)
}

func printTable(scan *model.ScanResult) {
	fmt.Printf("scan %s  %s  %d/%d symbols passed  (%d skipped, took %s)\n\n",
		scan.ID, scan.Filters.Timeframe, len(scan.Results), scan.Universe, len(scan.Skipped), scan.Duration.Round(10*time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tPRICE\tSCORE\tRECOMMENDATION\tTREND\tMOMENTUM\tVOLUME\tVOLATILITY")
	for _, res := range scan.Results {
		fmt.Fprintf(w, "%s\t%.4f\t%+.1f\t%s\t%s\t%s\t%s\t%s\n",
			res.Symbol, res.Price, res.TotalScore, res.Recommendation,
			res.States.TrendBias, res.States.MomentumState,
			res.States.VolumeContext, res.States.VolatilityState)
	}
	w.Flush()

	if len(scan.Skipped) > 0 {
		fmt.Println()
		for _, skip := range scan.Skipped {
			fmt.Printf("skipped %s: %s\n", skip.Symbol, skip.Reason)
		}
	}
}
