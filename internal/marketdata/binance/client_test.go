package binance

import (
	"testing"

	libbinance "github.com/adshao/go-binance/v2"

	"marketscan/internal/model"
)

func TestToCandle(t *testing.T) {
	k := &libbinance.Kline{
		OpenTime:         1704067200000, // 2024-01-01T00:00:00Z
		Open:             "42000.5",
		High:             "42500",
		Low:              "41800.25",
		Close:            "42250.75",
		Volume:           "1234.5",
		QuoteAssetVolume: "52000000",
	}
	c, err := toCandle(k)
	if err != nil {
		t.Fatalf("toCandle: %v", err)
	}
	if got := c.OpenTime.Format("2006-01-02T15:04:05Z"); got != "2024-01-01T00:00:00Z" {
		t.Errorf("open time = %s", got)
	}
	if c.Open != 42000.5 || c.High != 42500 || c.Low != 41800.25 || c.Close != 42250.75 {
		t.Errorf("OHLC = %+v", c)
	}
	if c.Volume != 1234.5 || c.QuoteVolume != 52000000 {
		t.Errorf("volumes = %v / %v", c.Volume, c.QuoteVolume)
	}
}

func TestToCandle_MalformedField(t *testing.T) {
	k := &libbinance.Kline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1", QuoteAssetVolume: "1"}
	if _, err := toCandle(k); err == nil {
		t.Fatal("expected parse error for malformed open price")
	}
}

func TestIntervalsCoverAllTimeframes(t *testing.T) {
	for _, tf := range []model.Timeframe{model.TF15m, model.TF1h, model.TF4h, model.TF1d, model.TF1w} {
		if _, ok := intervals[tf]; !ok {
			t.Errorf("no kline interval mapped for %s", tf)
		}
	}
}
