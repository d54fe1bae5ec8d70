package scanner

import (
	"fmt"
	"strings"

	"marketscan/internal/model"
)

// ValidateFilters rejects a filter set that cannot be scanned. This is the
// only fatal error path of a scan; everything past validation degrades
// per symbol.
func ValidateFilters(f model.ScanFilters) error {
	if !f.Timeframe.Valid() {
		return fmt.Errorf("scanner: %w: %q", model.ErrInvalidTimeframe, f.Timeframe)
	}
	if f.MinLiquidity < 0 {
		return fmt.Errorf("scanner: min liquidity must not be negative, got %v", f.MinLiquidity)
	}
	if f.Limit < 0 {
		return fmt.Errorf("scanner: limit must not be negative, got %d", f.Limit)
	}
	return nil
}

// stablecoinBases are assets whose market price is pegged; scanning them
// for trend setups is noise. Matched against the symbol's base after
// stripping a known quote suffix.
var stablecoinBases = map[string]bool{
	"USDT": true, "USDC": true, "BUSD": true, "TUSD": true, "FDUSD": true,
	"USDP": true, "USDD": true, "DAI": true, "GUSD": true, "PYUSD": true,
	"PAX": true, "PAXG": false, // PAXG is gold-backed, not a dollar peg
	"EUR": true, "AEUR": true, "EURS": true, "USTC": true,
	"FRAX": true, "LUSD": true, "SUSD": true,
}

// quoteSuffixes are the quote assets recognized when splitting a symbol.
// Longest first so FDUSD wins over USD-alike suffixes.
var quoteSuffixes = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "EUR", "TRY", "BTC", "ETH", "BNB"}

// IsStablecoin reports whether the traded base asset of a symbol like
// "USDCUSDT" is a pegged stablecoin.
func IsStablecoin(symbol string) bool {
	sym := strings.ToUpper(symbol)
	for _, quote := range quoteSuffixes {
		if strings.HasSuffix(sym, quote) && len(sym) > len(quote) {
			base := strings.TrimSuffix(sym, quote)
			return stablecoinBases[base]
		}
	}
	return stablecoinBases[sym]
}
