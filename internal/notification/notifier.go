// Package notification delivers scan alerts to external channels
// (Telegram, generic webhooks). An alert fires when a scanned symbol
// reaches a strong recommendation.
package notification

import (
	"context"
	"log"

	"marketscan/internal/model"
)

// Alert is one recommendation worth telling a human about.
type Alert struct {
	Symbol         string               `json:"symbol"`
	Price          float64              `json:"price"`
	TotalScore     float64              `json:"total_score"`
	Recommendation model.Recommendation `json:"recommendation"`
	Timeframe      model.Timeframe      `json:"timeframe"`
	ScanID         string               `json:"scan_id"`
}

// Notifier is the interface for all delivery backends.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier logs alerts instead of delivering them. Used when no
// external channel is configured, so alerting is visible in dev.
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] %s %s score=%.1f price=%.4f (%s)",
		alert.Recommendation, alert.Symbol, alert.TotalScore, alert.Price, alert.Timeframe)
	return nil
}
