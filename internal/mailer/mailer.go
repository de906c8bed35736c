// Package mailer delivers transactional mail.  The workflow only depends on
// the Sender interface; the SMTP implementation is wired in at startup and
// swapped for a recorder in tests.
package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// Sender is the mail-delivery contract.  Send is fire-and-forget from the
// workflow's point of view: no retries, no queuing.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Send dials the relay and delivers a single message.  A connection is made
// per call; the volume here (one mail per reset request) does not justify a
// pooled client.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.pass),
		)
	}
	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

// ResetMessage builds the subject and body of a password-reset mail.  The
// body embeds a link of the form <base>/reset_password/<token>.
func ResetMessage(baseURL, token string) (subject, body string) {
	subject = "Password Reset Request"
	body = fmt.Sprintf(`Hello,

A password change was requested for the account associated with this address.

To reset your password, open the following link in a browser:

%s/reset_password/%s

If you did not make this request, simply ignore this email and no changes will be made.
`, baseURL, token)
	return subject, body
}
