package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	"github.com/timayobrian6-droid/Internship-tracker/internal/metrics"
)

const dispatchTimeout = 5 * time.Second

// Dispatcher posts outbound messages to the external delivery gateway.
// Deliveries are best-effort: a circuit breaker sheds load when the gateway
// is down, and callers never treat a dispatch error as a mutation failure.
type Dispatcher struct {
	webhookURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewDispatcher(webhookURL string) *Dispatcher {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "notify",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("Notification breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return &Dispatcher{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: dispatchTimeout},
		breaker:    breaker,
	}
}

// Notify implements domain.Notifier.
func (d *Dispatcher) Notify(ctx context.Context, msg domain.OutboundMessage) error {
	if d.webhookURL == "" {
		return nil
	}

	_, err := d.breaker.Execute(func() (any, error) {
		return nil, d.post(ctx, msg)
	})
	if err != nil {
		metrics.NotificationFailures.Inc()
		return fmt.Errorf("dispatch notification: %w", err)
	}
	return nil
}

func (d *Dispatcher) post(ctx context.Context, msg domain.OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
