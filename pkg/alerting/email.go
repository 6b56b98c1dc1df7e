package alerting

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/placesgate/placesgate/pkg/limits/budget"
)

// EmailConfig holds SMTP server configuration.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string

	// UseTLS upgrades the connection with STARTTLS when the server offers it.
	UseTLS bool

	// Timeout bounds dialing and the SMTP conversation. Default: 10s
	Timeout time.Duration
}

// EmailNotifier sends alerts over SMTP.
type EmailNotifier struct {
	config EmailConfig
}

// NewEmailNotifier creates an email notifier.
func NewEmailNotifier(cfg EmailConfig) (*EmailNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EmailNotifier{config: cfg}, nil
}

// Notify sends one message to all recipients.
func (n *EmailNotifier) Notify(ctx context.Context, alert budget.Alert) error {
	addr := net.JoinHostPort(n.config.Host, fmt.Sprintf("%d", n.config.Port))

	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if n.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: n.config.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if n.config.Username != "" {
		auth := smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(n.config.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, to := range n.config.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(n.buildMessage(alert)); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}

// buildMessage renders an RFC 5322 plain-text message.
func (n *EmailNotifier) buildMessage(alert budget.Alert) []byte {
	s := alert.State

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", n.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(n.config.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject(alert))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(Summary(alert) + "\r\n\r\n")
	fmt.Fprintf(&buf, "Current usage:     $%.2f\r\n", s.CurrentUsage)
	fmt.Fprintf(&buf, "Budget limit:      $%.2f\r\n", s.BudgetLimit)
	fmt.Fprintf(&buf, "Percentage used:   %.1f%%\r\n", s.PercentageUsed)
	fmt.Fprintf(&buf, "Projected (month): $%.2f\r\n", s.ProjectedMonthlyCost)
	fmt.Fprintf(&buf, "Days remaining:    %d\r\n", s.DaysRemainingInMonth)
	return buf.Bytes()
}
