package notify

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/wneessen/go-mail"
)

// Message is one outbound notification email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends notification messages. The SMTP transport itself is an
// external collaborator; failures are reported, never retried.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPOptions configures the outbound mail client.
type SMTPOptions struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gte=1,lte=65535"`
	Username string
	Password string
	From     string `validate:"required,email"`
}

// SMTPMailer sends mail through a single configured SMTP host.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer validates the options and builds the mail client.
func NewSMTPMailer(opts SMTPOptions) (*SMTPMailer, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid SMTP options: %w", err)
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: opts.From}, nil
}

// Send delivers one message and returns the transport error, if any.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %s: %w", m.from, err)
	}
	if err := out.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipients %v: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
