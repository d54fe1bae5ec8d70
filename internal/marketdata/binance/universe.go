package binance

import (
	"context"
	"fmt"
	"strconv"

	"marketscan/internal/scanner"
)

// Symbols lists the tradable spot pairs for the configured quote
// asset, annotated with rolling 24h quote volume so the scanner can
// apply its liquidity floor without extra round trips.
func (c *Client) Symbols(ctx context.Context) ([]scanner.SymbolInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("binance: rate limiter: %w", err)
	}
	info, err := c.api.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: exchange info: %w", err)
	}

	tradable := make(map[string]bool, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || !s.IsSpotTradingAllowed {
			continue
		}
		if c.quote != "" && s.QuoteAsset != c.quote {
			continue
		}
		tradable[s.Symbol] = true
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("binance: rate limiter: %w", err)
	}
	stats, err := c.api.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: 24h stats: %w", err)
	}

	out := make([]scanner.SymbolInfo, 0, len(tradable))
	for _, st := range stats {
		if !tradable[st.Symbol] {
			continue
		}
		// The ticker endpoint occasionally reports empty volume for
		// freshly listed pairs; treat those as zero liquidity.
		qv, _ := strconv.ParseFloat(st.QuoteVolume, 64)
		out = append(out, scanner.SymbolInfo{
			Symbol:         st.Symbol,
			QuoteVolume24h: qv,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("binance: no tradable %s pairs in exchange info", c.quote)
	}
	return out, nil
}
