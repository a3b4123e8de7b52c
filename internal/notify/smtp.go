package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPDispatcher delivers notification events as plain-text email over SMTP.
type SMTPDispatcher struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

var _ Dispatcher = (*SMTPDispatcher)(nil)

// NewSMTPDispatcher creates a dispatcher for the given server. Username may
// be empty for unauthenticated relays.
func NewSMTPDispatcher(addr, from, username, password string) *SMTPDispatcher {
	d := &SMTPDispatcher{addr: addr, from: from}
	if username != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		d.auth = smtp.PlainAuth("", username, password, host)
	}
	return d
}

// Dispatch sends the event as one email. The context deadline bounds the
// whole exchange; callers run this off the request path.
func (d *SMTPDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev.To == "" {
		return fmt.Errorf("notify: event %s has no recipient", ev.Kind)
	}

	msg := d.buildMessage(ev)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(d.addr, d.auth, d.from, []string{ev.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: send %s to %s: %w", ev.Kind, ev.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: send %s to %s: %w", ev.Kind, ev.To, ctx.Err())
	}
}

func (d *SMTPDispatcher) buildMessage(ev Event) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: MindWell <%s>\r\n", d.from)
	fmt.Fprintf(&b, "To: %s\r\n", ev.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", ev.Subject())
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(ev.Body())
	return []byte(b.String())
}
