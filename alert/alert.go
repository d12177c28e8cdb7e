// Package alert is the operational notification sink: a Slack webhook
// fired for the three conditions the spec calls out (ingress reconnect,
// lost database connection, push-server bind failure). Adapted from the
// teacher's slack package (slack/slack.go in the Kucoin level-3 demo),
// which loaded a webhook token with github.com/tkanos/gonfig and posted a
// text message; generalized here to load a full webhook URL (so no secret
// path fragment is baked into source) and to never block or panic the
// caller on a send failure.
package alert

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tkanos/gonfig"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/helper"
)

// MinInterval is the minimum spacing between two fired alerts, so a
// sustained outage (e.g. an ingress that never reconnects) produces one
// notification, not a storm.
const MinInterval = 30 * time.Second

// config is the on-disk shape read by gonfig: a single Slack incoming
// webhook URL.
type config struct {
	WebhookURL string
}

// Sink posts short text messages to a Slack incoming webhook. A nil *Sink
// is a valid no-op sink, so callers can always call Notify without a
// preceding nil check.
type Sink struct {
	webhookURL string
	client     *http.Client

	mu       sync.Mutex
	lastSent time.Time
}

// Load reads the alert sink config at path. If path is empty or the file
// does not exist, Load returns a nil *Sink (no error): alerting is
// optional and absent configuration means "disabled", not "broken".
func Load(path string) (*Sink, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	var cfg config
	if err := gonfig.GetConf(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.WebhookURL == "" {
		return nil, nil
	}

	return &Sink{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// Notify fires message at the webhook, fire-and-forget, rate-limited to
// MinInterval. It is safe to call on a nil *Sink. Send errors are logged,
// never returned or panicked on.
func (s *Sink) Notify(message string) {
	if s == nil {
		return
	}

	s.mu.Lock()
	if !s.lastSent.IsZero() && time.Since(s.lastSent) < MinInterval {
		s.mu.Unlock()
		return
	}
	s.lastSent = time.Now()
	s.mu.Unlock()

	go s.send(message)
}

func (s *Sink) send(message string) {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		helper.Error("alert: marshal failed: %v", err)
		return
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		helper.Error("alert: send failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		helper.Error("alert: webhook returned status %d", resp.StatusCode)
	}
}
