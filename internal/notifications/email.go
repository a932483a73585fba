// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/judgarr/internal/config"
)

// EmailChannel delivers events over SMTP as plaintext mail.
type EmailChannel struct {
	cfg         config.SMTPConfig
	dialTimeout time.Duration
}

// NewEmailChannel creates an SMTP channel from configuration.
func NewEmailChannel(cfg config.SMTPConfig) *EmailChannel {
	return &EmailChannel{
		cfg:         cfg,
		dialTimeout: 30 * time.Second,
	}
}

// Name returns the channel identifier.
func (c *EmailChannel) Name() string {
	return "email"
}

// Send mails the event to every configured recipient in one transaction.
func (c *EmailChannel) Send(ctx context.Context, event *Event) error {
	if len(c.cfg.ToAddresses) == 0 {
		return fmt.Errorf("no recipient addresses configured")
	}

	msg := c.buildMessage(event)
	return c.sendSMTP(ctx, msg)
}

func (c *EmailChannel) buildMessage(event *Event) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: Judgarr <%s>\r\n", c.cfg.FromAddress))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(c.cfg.ToAddresses, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", event.Title))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", event.Timestamp.UTC().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(event.Body)
	msg.WriteString("\r\n")

	return msg.String()
}

func (c *EmailChannel) sendSMTP(ctx context.Context, msg string) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if c.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: c.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.cfg.FromAddress); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, to := range c.cfg.ToAddresses {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("set recipient %s: %w", to, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// A failed QUIT after an accepted DATA is not a delivery failure.
	_ = client.Quit()

	return nil
}
