package alerting

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/placesgate/placesgate/pkg/limits/budget"
)

func testAlert() budget.Alert {
	return budget.Alert{
		ThresholdPercent: 75,
		Timestamp:        time.Date(2026, 7, 22, 14, 0, 0, 0, time.UTC),
		State: budget.State{
			CurrentUsage:         37.6,
			BudgetLimit:          50,
			PercentageUsed:       75.2,
			DaysRemainingInMonth: 9,
			ProjectedMonthlyCost: 53.71,
		},
	}
}

// ==== Factory ====

func TestNew_SelectsChannel(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "default is log", cfg: Config{}, want: "*alerting.LogNotifier"},
		{name: "log", cfg: Config{Channel: "LOG"}, want: "*alerting.LogNotifier"},
		{name: "webhook", cfg: Config{Channel: "webhook", Webhook: WebhookConfig{URL: "http://example.invalid"}}, want: "*alerting.WebhookNotifier"},
		{name: "webhook without url", cfg: Config{Channel: "webhook"}, wantErr: true},
		{name: "email", cfg: Config{Channel: "email", Email: EmailConfig{Host: "smtp.example.com", From: "a@example.com", To: []string{"b@example.com"}}}, want: "*alerting.EmailNotifier"},
		{name: "email without recipients", cfg: Config{Channel: "email", Email: EmailConfig{Host: "smtp.example.com", From: "a@example.com"}}, wantErr: true},
		{name: "unknown", cfg: Config{Channel: "pager"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := typeName(n); got != tt.want {
				t.Errorf("New() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(n budget.Notifier) string {
	switch n.(type) {
	case *LogNotifier:
		return "*alerting.LogNotifier"
	case *WebhookNotifier:
		return "*alerting.WebhookNotifier"
	case *EmailNotifier:
		return "*alerting.EmailNotifier"
	}
	return "unknown"
}

func TestSummary(t *testing.T) {
	got := Summary(testAlert())
	for _, want := range []string{"75% threshold", "$37.60", "$50.00", "75.2%", "$53.71", "9 days"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}

type countingRecorder struct{ thresholds []float64 }

func (c *countingRecorder) RecordBudgetAlert(threshold float64) {
	c.thresholds = append(c.thresholds, threshold)
}

func TestCounted(t *testing.T) {
	counter := &countingRecorder{}
	delivered := 0
	next := budget.NotifierFunc(func(ctx context.Context, a budget.Alert) error {
		delivered++
		return nil
	})

	n := Counted(next, counter)
	if err := n.Notify(context.Background(), testAlert()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if delivered != 1 {
		t.Errorf("Expected 1 delivery, got %d", delivered)
	}
	if len(counter.thresholds) != 1 || counter.thresholds[0] != 75 {
		t.Errorf("Expected counted threshold 75, got %v", counter.thresholds)
	}

	if err := Counted(nil, counter).Notify(context.Background(), testAlert()); err != nil {
		t.Errorf("Expected nil next to be tolerated, got %v", err)
	}
}

// ==== Log ====

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	if err := NewLogNotifier(logger).Notify(context.Background(), testAlert()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("Expected WARN level, got %v", entry["level"])
	}
	if entry["threshold_percent"] != 75.0 {
		t.Errorf("Expected threshold_percent 75, got %v", entry["threshold_percent"])
	}
}

// ==== Webhook ====

func TestWebhookNotifier_Delivers(t *testing.T) {
	var got webhookPayload
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(WebhookConfig{
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer hook"},
	})
	if err != nil {
		t.Fatalf("NewWebhookNotifier() error = %v", err)
	}

	if err := n.Notify(context.Background(), testAlert()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got.ThresholdPercent != 75 {
		t.Errorf("Expected threshold 75, got %v", got.ThresholdPercent)
	}
	if !strings.Contains(got.Text, "75% threshold") {
		t.Errorf("Expected text summary, got %q", got.Text)
	}
	if got.Budget.BudgetLimit != 50 {
		t.Errorf("Expected budget limit 50, got %v", got.Budget.BudgetLimit)
	}
	if auth != "Bearer hook" {
		t.Errorf("Expected custom header, got %q", auth)
	}
}

func TestWebhookNotifier_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n, _ := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	err := n.Notify(context.Background(), testAlert())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestWebhookNotifier_BudgetChargeOnCancelledRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(WebhookConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewWebhookNotifier() error = %v", err)
	}
	m := budget.New(budget.Config{MonthlyLimit: 1}, nil, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Charge(ctx, 0.6); err != nil {
		t.Fatalf("Charge() error = %v", err)
	}
	m.Charge(context.Background(), 0.1)

	if got := hits.Load(); got != 1 {
		t.Errorf("Expected 1 webhook delivery, got %d", got)
	}
}

// ==== Email ====

// fakeSMTP accepts one session and returns the DATA payload.
func fakeSMTP(t *testing.T) (addr string, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(s string) { conn.Write([]byte(s + "\r\n")) }
		write("220 localhost ESMTP")

		var body strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					out <- body.String()
					write("250 OK")
					continue
				}
				body.WriteString(line)
				continue
			}

			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				write("250 OK")
			case cmd == "DATA":
				inData = true
				write("354 End data with <CR><LF>.<CR><LF>")
			case cmd == "QUIT":
				write("221 Bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	return ln.Addr().String(), out
}

func TestEmailNotifier_Sends(t *testing.T) {
	addr, data := fakeSMTP(t)
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	n, err := NewEmailNotifier(EmailConfig{
		Host:    host,
		Port:    port,
		From:    "gateway@example.com",
		To:      []string{"ops@example.com", "finance@example.com"},
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewEmailNotifier() error = %v", err)
	}

	if err := n.Notify(context.Background(), testAlert()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	select {
	case msg := <-data:
		if !strings.Contains(msg, "Subject: [placesgate] Budget 75% threshold reached") {
			t.Errorf("Expected subject line, got %q", msg)
		}
		if !strings.Contains(msg, "To: ops@example.com, finance@example.com") {
			t.Errorf("Expected recipients header, got %q", msg)
		}
		if !strings.Contains(msg, "Current usage:     $37.60") {
			t.Errorf("Expected usage line, got %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestEmailNotifier_ConnectFailure(t *testing.T) {
	ln, _ := net.Listen("tcp", "127.0.0.1:0")
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	n, _ := NewEmailNotifier(EmailConfig{
		Host:    "127.0.0.1",
		Port:    addr.Port,
		From:    "a@example.com",
		To:      []string{"b@example.com"},
		Timeout: time.Second,
	})
	if err := n.Notify(context.Background(), testAlert()); err == nil {
		t.Error("Expected connect error, got nil")
	}
}
