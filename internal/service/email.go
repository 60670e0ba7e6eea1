package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"github.com/eventbuddy/backend/internal/config"
)

// Mailer dispatches HTML notification mails. Delivery is best-effort: the
// flows that change state first and mail second never roll back on a failed
// send.
type Mailer interface {
	Send(to, subject, htmlBody string) error
	Enabled() bool
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewMailer returns an SMTP-backed mailer, or a noop one when no host/from is
// configured, so local development works without a mail relay.
func NewMailer(cfg config.SMTPConfig) Mailer {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))
	if cfg.Host == "" || cfg.From == "" {
		log.Printf("[mailer] disabled; SMTP host or from missing")
		return &noopMailer{}
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	log.Printf("[mailer] enabled host=%s port=%s security=%s", cfg.Host, cfg.Port, cfg.Security)
	return &smtpMailer{cfg: cfg}
}

type noopMailer struct{}

func (n *noopMailer) Send(string, string, string) error { return nil }
func (n *noopMailer) Enabled() bool                     { return false }

func (m *smtpMailer) Enabled() bool {
	return true
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := message(m.cfg.From, to, subject, htmlBody)

	var err error
	switch m.cfg.Security {
	case "ssl", "smtps":
		err = m.sendSSL(to, msg)
	case "none":
		err = smtp.SendMail(m.addr(), nil, m.cfg.From, []string{to}, msg)
	default:
		err = m.sendStartTLS(to, msg)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

func (m *smtpMailer) sendStartTLS(to string, msg []byte) error {
	addr := m.addr()
	host, _, _ := net.SplitHostPort(addr)

	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}

	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	return m.submit(client, to, msg)
}

func (m *smtpMailer) sendSSL(to string, msg []byte) error {
	conn, err := tls.Dial("tcp", m.addr(), &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	return m.submit(client, to, msg)
}

func (m *smtpMailer) submit(client *smtp.Client, to string, msg []byte) error {
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (m *smtpMailer) addr() string {
	return net.JoinHostPort(m.cfg.Host, m.cfg.Port)
}

func message(from, to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
