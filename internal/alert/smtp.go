// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package alert

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/ecoeye/internal/config"
)

// Message is a composed alert ready for transport.
type Message struct {
	Subject    string
	Body       string
	Attachment *Attachment
}

// Attachment is an inline media attachment, typically the annotated
// frame that triggered the alert.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Transport delivers a composed alert message to one recipient.
type Transport interface {
	Send(ctx context.Context, to string, msg *Message) error
}

// SMTPTransport implements Transport over SMTP with optional STARTTLS
// and AUTH PLAIN.
type SMTPTransport struct {
	cfg config.SMTP
}

// NewSMTPTransport creates an SMTP transport from config.
func NewSMTPTransport(cfg config.SMTP) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

// Send delivers the message. Any failure is returned to the caller; the
// dispatcher owns the best-effort policy.
func (t *SMTPTransport) Send(ctx context.Context, to string, msg *Message) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	dialer := &net.Dialer{Timeout: t.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if t.cfg.StartTLS {
		tlsConfig := &tls.Config{
			ServerName: t.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(t.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(buildMIME(t.cfg.From, to, msg))); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Quit failures after a completed DATA are not delivery failures.
	_ = client.Quit() //nolint:errcheck

	return nil
}

// buildMIME renders the message as a MIME document: plain text when
// there is no attachment, multipart/mixed with a base64 image part
// otherwise.
func buildMIME(from, to string, msg *Message) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: EcoEye <%s>\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.Attachment == nil {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.Body)
		b.WriteString("\r\n")
		return b.String()
	}

	boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	mimeType := msg.Attachment.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", mimeType, msg.Attachment.Filename))
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", msg.Attachment.Filename))
	b.WriteString("\r\n")
	b.WriteString(wrapBase64(base64.StdEncoding.EncodeToString(msg.Attachment.Data)))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return b.String()
}

// wrapBase64 folds base64 content at the 76-column MIME line limit.
func wrapBase64(s string) string {
	const lineLen = 76
	var b strings.Builder
	for len(s) > lineLen {
		b.WriteString(s[:lineLen])
		b.WriteString("\r\n")
		s = s[lineLen:]
	}
	b.WriteString(s)
	return b.String()
}
