package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
)

// EmailChannel sends alerts as plain-text mail over SMTP.
type EmailChannel struct {
	addr       string
	from       string
	password   string
	recipients []string

	// sendMail is smtp.SendMail, swappable in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailChannel(host string, port int, from, password string, recipients []string) *EmailChannel {
	if port <= 0 {
		port = 587
	}

	return &EmailChannel{
		addr:       fmt.Sprintf("%s:%d", host, port),
		from:       from,
		password:   password,
		recipients: recipients,
		sendMail:   smtp.SendMail,
	}
}

func (c *EmailChannel) Name() string {
	return "email"
}

func (c *EmailChannel) Recipient() string {
	return strings.Join(c.recipients, ",")
}

func (c *EmailChannel) Send(ctx context.Context, alert entity.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if c.password != "" {
		host := c.addr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", c.from, c.password, host)
	}

	subject := fmt.Sprintf("[FRAUD ALERT] rule %q matched transaction %s", alert.RuleName, alert.TransactionID)
	body := fmt.Sprintf(
		"Rule %q (%s) matched transaction %s.\r\nAmount: %d\r\nAccount: %s\r\nReason: %s\r\nCorrelation ID: %s\r\n",
		alert.RuleName, alert.RuleType, alert.TransactionID,
		alert.Amount, alert.FromAccount, alert.Reason, alert.CorrelationID,
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", c.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(c.recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return c.sendMail(c.addr, auth, c.from, c.recipients, []byte(msg.String()))
}
