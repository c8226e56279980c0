package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	From     string `mapstructure:"from" yaml:"from,omitempty"`
	// UseTLS upgrades a plain connection with STARTTLS. Nil means true.
	UseTLS *bool `mapstructure:"use_tls" yaml:"use_tls,omitempty"`
	// UseSSL connects with implicit TLS, and only applies when UseTLS is false.
	UseSSL bool `mapstructure:"use_ssl" yaml:"use_ssl,omitempty"`
}

// EmailConfig describes the results email.
type EmailConfig struct {
	Recipients []string   `mapstructure:"recipients" yaml:"recipients"`
	Subject    string     `mapstructure:"subject" yaml:"subject,omitempty"`
	From       string     `mapstructure:"from" yaml:"from,omitempty"`
	SMTP       SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

const defaultSMTPPort = 587

// sendFunc delivers a composed message.
type sendFunc func(ctx context.Context, cfg SMTPConfig, from string, to []string, msg []byte) error

// EmailNotifier mails the failed identifiers with the run's artifacts attached.
type EmailNotifier struct {
	cfg  EmailConfig
	send sendFunc
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: sendSMTP}
}

func (e *EmailNotifier) Name() string {
	return "email"
}

// Sender returns the From address: the email sender, else the SMTP from, else the username.
func (e *EmailNotifier) Sender() string {
	for _, s := range []string{e.cfg.From, e.cfg.SMTP.From, e.cfg.SMTP.Username} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Configured reports whether there is anyone to mail and a server to mail through.
func (e *EmailNotifier) Configured() bool {
	return len(e.cfg.Recipients) > 0 && e.cfg.SMTP.Host != "" && e.Sender() != ""
}

// Subject returns the configured subject or the default for the collection.
func (e *EmailNotifier) Subject(collection string) string {
	if e.cfg.Subject != "" {
		return e.cfg.Subject
	}
	return "API test results: " + collection
}

// Notify sends the email. Missing recipients, host or sender make it a no-op.
func (e *EmailNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	if !e.Configured() {
		return nil
	}
	msg, err := e.compose(summary, time.Now())
	if err != nil {
		return err
	}
	return e.send(ctx, e.cfg.SMTP, e.Sender(), e.cfg.Recipients, msg)
}

func (e *EmailNotifier) compose(summary *RunSummary, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", e.Sender())
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(e.cfg.Recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject(summary.Collection)))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(summary.FailedListText())); err != nil {
		return nil, err
	}

	for _, path := range summary.Attachments {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := attach(w, filepath.Base(path), data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attach(w *multipart.Writer, name string, data []byte) error {
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {ctype},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprintf(part, "%s\r\n", encoded)
	return err
}

func sendSMTP(ctx context.Context, cfg SMTPConfig, from string, to []string, msg []byte) error {
	port := cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	useTLS := cfg.UseTLS == nil || *cfg.UseTLS
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	var conn net.Conn
	var err error
	if cfg.UseSSL && !useTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if useTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	if cfg.Username != "" && cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("recipient %s rejected: %w", rcpt, err)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}
