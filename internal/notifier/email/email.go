// Package email implements an SMTP-based email notifier
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/newthinker/gems/internal/notifier"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string

	send sendFunc
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Init(cfg notifier.Config) error {
	if host, ok := cfg.Params["host"].(string); ok {
		e.host = host
	}
	if port, ok := cfg.Params["port"].(int); ok {
		e.port = port
	}
	if username, ok := cfg.Params["username"].(string); ok {
		e.username = username
	}
	if password, ok := cfg.Params["password"].(string); ok {
		e.password = password
	}
	if from, ok := cfg.Params["from"].(string); ok {
		e.from = from
	}
	if to, ok := cfg.Params["to"].([]string); ok {
		e.to = to
	}
	if e.send == nil {
		e.send = smtp.SendMail
	}

	if e.host == "" || e.from == "" || len(e.to) == 0 {
		return fmt.Errorf("email: host, from, and to are required")
	}
	return nil
}

// Send mails the digest as an HTML table with the latest CSV attached.
// net/smtp has no context support, so ctx is only checked before dialing.
func (e *Email) Send(ctx context.Context, d notifier.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := e.buildMessage(d)
	if err != nil {
		return fmt.Errorf("email: building message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	if err := e.send(addr, auth, e.from, e.to, msg); err != nil {
		return fmt.Errorf("email: sending to %s: %w", addr, err)
	}
	return nil
}

func (e *Email) subject(d notifier.Digest) string {
	return fmt.Sprintf("GEMS Watchlist: %d rows (%s) %s",
		len(d.Records), d.Policy, d.GeneratedAt.Format("2006-01-02"))
}

func (e *Email) buildMessage(d notifier.Digest) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(e.formatHTML(d))); err != nil {
		return nil, err
	}

	if len(d.CSV) > 0 {
		name := filepath.Base(d.LatestPath)
		if d.LatestPath == "" {
			name = "watchlist.csv"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType("text/csv", map[string]string{"name": name})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(d.CSV)); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.to, ","))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.subject(d)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%s\r\n", mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func (e *Email) formatHTML(d notifier.Digest) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>GEMS Watchlist</h2>")
	sb.WriteString(fmt.Sprintf("<p>Policy: %s<br>Generated at: %s<br>Skipped tickers: %d</p>",
		html.EscapeString(d.Policy), d.GeneratedAt.Format("2006-01-02 15:04:05"), d.Skipped))

	if len(d.Records) == 0 {
		sb.WriteString("<p>No tickers qualified this run.</p>")
		sb.WriteString("</body></html>")
		return sb.String()
	}

	sb.WriteString(`<table border="1" cellpadding="4" cellspacing="0">`)
	sb.WriteString("<tr>")
	for _, col := range d.Columns {
		sb.WriteString("<th>" + html.EscapeString(col) + "</th>")
	}
	sb.WriteString("</tr>")

	for _, rec := range d.Records {
		sb.WriteString("<tr>")
		for _, v := range rec {
			style := ""
			if v == "Buy" {
				style = ` style="color: #28a745;"` // green for buy
			}
			sb.WriteString(fmt.Sprintf("<td%s>%s</td>", style, html.EscapeString(v)))
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")
	sb.WriteString("</body></html>")
	return sb.String()
}

// wrapBase64 encodes data with CRLF line breaks every 76 characters
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	out.WriteString("\r\n")
	return out.Bytes()
}
