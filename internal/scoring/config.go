// Package scoring turns raw indicator values into normalized sub-scores,
// classifies market state along four axes, and reduces everything into a
// composite score with a discrete recommendation.
//
// Every threshold and weight lives in Config so the same engine can be
// tested and tuned without touching code. The zero Config is not usable;
// start from DefaultConfig or a YAML file.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Periods holds the lookback periods for every indicator in the bank.
type Periods struct {
	EMAFast        int `yaml:"ema_fast"`
	EMASlow        int `yaml:"ema_slow"`
	RSI            int `yaml:"rsi"`
	MACDFast       int `yaml:"macd_fast"`
	MACDSlow       int `yaml:"macd_slow"`
	MACDSignal     int `yaml:"macd_signal"`
	MFI            int `yaml:"mfi"`
	Bollinger      int `yaml:"bollinger"`
	ATR            int `yaml:"atr"`
	OBVTrendWindow int `yaml:"obv_trend_window"`
}

// Thresholds holds the classification cut lines.
type Thresholds struct {
	RSIOversold   float64 `yaml:"rsi_oversold"`   // below: oversold
	RSIOverbought float64 `yaml:"rsi_overbought"` // above: overbought
	RSIStrong     float64 `yaml:"rsi_strong"`     // above (with MACD>0): strong momentum
	RSIWeak       float64 `yaml:"rsi_weak"`       // below (with MACD<0): weak momentum
	MFIOversold   float64 `yaml:"mfi_oversold"`
	MFIOverbought float64 `yaml:"mfi_overbought"`
	ATRLowPct     float64 `yaml:"atr_low_pct"`  // ATR% below: low volatility
	ATRHighPct    float64 `yaml:"atr_high_pct"` // ATR% above: high volatility
	BollingerK    float64 `yaml:"bollinger_k"`
	SqueezeWidth  float64 `yaml:"squeeze_width"` // band width below: squeeze
}

// Scores holds the sub-score magnitudes handed out by the normalizer.
// Every contribution is clamped to ±Clamp so no single indicator can
// dominate the composite sum.
type Scores struct {
	Clamp      float64 `yaml:"clamp"`
	TrendStack float64 `yaml:"trend_stack"` // EMA crossover agreement
	RSIExtreme float64 `yaml:"rsi_extreme"` // oversold / overbought
	RSIMild    float64 `yaml:"rsi_mild"`
	MACDStrong float64 `yaml:"macd_strong"` // line and histogram agree
	MACDMild   float64 `yaml:"macd_mild"`
	MFIExtreme float64 `yaml:"mfi_extreme"`
	OBVTrend   float64 `yaml:"obv_trend"`
	Squeeze    float64 `yaml:"squeeze"`
	VWAPBias   float64 `yaml:"vwap_bias"`
}

// Recommend holds the monotonic score→recommendation cut points:
// strong_buy at ≥ StrongBuy, buy at ≥ Buy, sell at ≤ Sell, strong_sell at
// ≤ StrongSell, hold in between.
type Recommend struct {
	StrongBuy  float64 `yaml:"strong_buy"`
	Buy        float64 `yaml:"buy"`
	Sell       float64 `yaml:"sell"`
	StrongSell float64 `yaml:"strong_sell"`
}

// Config is the full, versioned scoring configuration.
type Config struct {
	Version    string     `yaml:"version"`
	Periods    Periods    `yaml:"periods"`
	Thresholds Thresholds `yaml:"thresholds"`
	Scores     Scores     `yaml:"scores"`
	Recommend  Recommend  `yaml:"recommend"`
}

// DefaultConfig returns the built-in v1 scoring table.
func DefaultConfig() Config {
	return Config{
		Version: "v1",
		Periods: Periods{
			EMAFast:        20,
			EMASlow:        50,
			RSI:            14,
			MACDFast:       12,
			MACDSlow:       26,
			MACDSignal:     9,
			MFI:            14,
			Bollinger:      20,
			ATR:            14,
			OBVTrendWindow: 10,
		},
		Thresholds: Thresholds{
			RSIOversold:   30,
			RSIOverbought: 70,
			RSIStrong:     55,
			RSIWeak:       45,
			MFIOversold:   20,
			MFIOverbought: 80,
			ATRLowPct:     0.5,
			ATRHighPct:    2.0,
			BollingerK:    2.0,
			SqueezeWidth:  0.04,
		},
		Scores: Scores{
			Clamp:      2,
			TrendStack: 2,
			RSIExtreme: 2,
			RSIMild:    1,
			MACDStrong: 2,
			MACDMild:   1,
			MFIExtreme: 2,
			OBVTrend:   1,
			Squeeze:    1,
			VWAPBias:   1,
		},
		Recommend: Recommend{
			StrongBuy:  6,
			Buy:        2,
			Sell:       -2,
			StrongSell: -6,
		},
	}
}

// LoadConfig reads a scoring config from a YAML file, starting from the
// defaults so partial files only override what they name. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("scoring config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("scoring config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("scoring config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would break the engine's
// invariants, above all the monotonic recommendation mapping.
func (c Config) Validate() error {
	p := c.Periods
	for _, pv := range []struct {
		name string
		v    int
	}{
		{"ema_fast", p.EMAFast}, {"ema_slow", p.EMASlow}, {"rsi", p.RSI},
		{"macd_fast", p.MACDFast}, {"macd_slow", p.MACDSlow}, {"macd_signal", p.MACDSignal},
		{"mfi", p.MFI}, {"bollinger", p.Bollinger}, {"atr", p.ATR},
		{"obv_trend_window", p.OBVTrendWindow},
	} {
		if pv.v <= 0 {
			return fmt.Errorf("period %s must be positive, got %d", pv.name, pv.v)
		}
	}
	if p.EMAFast >= p.EMASlow {
		return fmt.Errorf("ema_fast (%d) must be shorter than ema_slow (%d)", p.EMAFast, p.EMASlow)
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be shorter than macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}

	t := c.Thresholds
	if t.RSIOversold >= t.RSIWeak || t.RSIWeak >= t.RSIStrong || t.RSIStrong >= t.RSIOverbought {
		return fmt.Errorf("rsi thresholds must be ordered oversold < weak < strong < overbought")
	}
	if t.ATRLowPct >= t.ATRHighPct {
		return fmt.Errorf("atr_low_pct (%v) must be below atr_high_pct (%v)", t.ATRLowPct, t.ATRHighPct)
	}

	if c.Scores.Clamp <= 0 {
		return fmt.Errorf("score clamp must be positive, got %v", c.Scores.Clamp)
	}

	r := c.Recommend
	if !(r.StrongSell < r.Sell && r.Sell < r.Buy && r.Buy < r.StrongBuy) {
		return fmt.Errorf("recommendation thresholds must be ordered strong_sell < sell < buy < strong_buy")
	}
	if r.Sell > 0 || r.Buy < 0 {
		return fmt.Errorf("hold band must contain zero (sell=%v, buy=%v)", r.Sell, r.Buy)
	}
	return nil
}

// MinCandles returns the recommended minimum series length for the
// configured periods: the longest lookback plus the OBV slope window,
// with headroom for EMA convergence.
func (c Config) MinCandles() int {
	longest := c.Periods.EMASlow
	for _, p := range []int{c.Periods.MACDSlow + c.Periods.MACDSignal, c.Periods.Bollinger, c.Periods.ATR + 1, c.Periods.MFI + 1, c.Periods.RSI + 1} {
		if p > longest {
			longest = p
		}
	}
	return longest + c.Periods.OBVTrendWindow
}
