package notification

import (
	"context"
	"log"

	"marketscan/internal/model"
)

// Alerter watches completed scans and pushes strong recommendations
// through its notifiers. Delivery errors are logged, never fatal: a
// dead webhook must not fail a scan.
type Alerter struct {
	notifiers []Notifier

	// OnSent feeds the alerts-sent counter.
	OnSent func(channel string)
}

// NewAlerter builds an alerter over the given backends. With no
// backends it falls back to the log notifier.
func NewAlerter(notifiers ...Notifier) *Alerter {
	if len(notifiers) == 0 {
		notifiers = []Notifier{NewLogNotifier()}
	}
	return &Alerter{notifiers: notifiers}
}

// ProcessScan sends one alert per strong_buy or strong_sell result.
func (a *Alerter) ProcessScan(ctx context.Context, scan *model.ScanResult) {
	for _, res := range scan.Results {
		if res.Recommendation != model.StrongBuy && res.Recommendation != model.StrongSell {
			continue
		}
		alert := Alert{
			Symbol:         res.Symbol,
			Price:          res.Price,
			TotalScore:     res.TotalScore,
			Recommendation: res.Recommendation,
			Timeframe:      scan.Filters.Timeframe,
			ScanID:         scan.ID,
		}
		for _, n := range a.notifiers {
			if err := n.Send(ctx, alert); err != nil {
				log.Printf("[notify] delivery failed for %s: %v", alert.Symbol, err)
				continue
			}
			if a.OnSent != nil {
				a.OnSent(channelName(n))
			}
		}
	}
}

func channelName(n Notifier) string {
	switch n.(type) {
	case *TelegramNotifier:
		return "telegram"
	case *WebhookNotifier:
		return "webhook"
	default:
		return "log"
	}
}
