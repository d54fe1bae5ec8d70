package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketscan/internal/model"
)

type captureNotifier struct {
	alerts []Alert
	err    error
}

func (c *captureNotifier) Send(ctx context.Context, alert Alert) error {
	if c.err != nil {
		return c.err
	}
	c.alerts = append(c.alerts, alert)
	return nil
}

func scanWith(results ...*model.AnalysisResult) *model.ScanResult {
	return &model.ScanResult{
		ID:      "scan-1",
		Filters: model.ScanFilters{Timeframe: model.TF1h},
		Results: results,
	}
}

func TestProcessScan_OnlyStrongRecommendationsAlert(t *testing.T) {
	capture := &captureNotifier{}
	a := NewAlerter(capture)

	a.ProcessScan(context.Background(), scanWith(
		&model.AnalysisResult{Symbol: "AAAUSDT", TotalScore: 7, Recommendation: model.StrongBuy},
		&model.AnalysisResult{Symbol: "BBBUSDT", TotalScore: 3, Recommendation: model.Buy},
		&model.AnalysisResult{Symbol: "CCCUSDT", TotalScore: -7, Recommendation: model.StrongSell},
		&model.AnalysisResult{Symbol: "DDDUSDT", TotalScore: 0, Recommendation: model.Hold},
	))

	if len(capture.alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(capture.alerts))
	}
	if capture.alerts[0].Symbol != "AAAUSDT" || capture.alerts[1].Symbol != "CCCUSDT" {
		t.Errorf("alerted symbols = %s, %s", capture.alerts[0].Symbol, capture.alerts[1].Symbol)
	}
	if capture.alerts[0].ScanID != "scan-1" || capture.alerts[0].Timeframe != model.TF1h {
		t.Errorf("alert context = %+v", capture.alerts[0])
	}
}

func TestProcessScan_DeliveryFailureIsNotFatal(t *testing.T) {
	failing := &captureNotifier{err: errors.New("endpoint down")}
	working := &captureNotifier{}
	a := NewAlerter(failing, working)

	a.ProcessScan(context.Background(), scanWith(
		&model.AnalysisResult{Symbol: "AAAUSDT", TotalScore: 8, Recommendation: model.StrongBuy},
	))

	if len(working.alerts) != 1 {
		t.Errorf("working notifier got %d alerts, want 1", len(working.alerts))
	}
}

func TestProcessScan_SentCallback(t *testing.T) {
	a := NewAlerter(&captureNotifier{})
	var channels []string
	a.OnSent = func(ch string) { channels = append(channels, ch) }

	a.ProcessScan(context.Background(), scanWith(
		&model.AnalysisResult{Symbol: "AAAUSDT", Recommendation: model.StrongBuy},
	))

	if len(channels) != 1 || channels[0] != "log" {
		t.Errorf("channels = %v", channels)
	}
}

func TestWebhookNotifier_PostsAlertJSON(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	alert := Alert{Symbol: "BTCUSDT", TotalScore: 7, Recommendation: model.StrongBuy, Timeframe: model.TF4h}
	if err := n.Send(context.Background(), alert); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.Symbol != "BTCUSDT" || got.Recommendation != model.StrongBuy || got.SentAt == "" {
		t.Errorf("payload = %+v", got)
	}
}

func TestWebhookNotifier_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), Alert{Symbol: "BTCUSDT"}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got := escapeMarkdown("a_b*c.d"); got != `a\_b\*c\.d` {
		t.Errorf("escaped = %q", got)
	}
}
