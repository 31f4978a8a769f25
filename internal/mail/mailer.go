package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends the verification and password-reset emails over SMTP.
type SMTPMailer struct {
	client      *gomail.Client
	from        string
	frontendURL string
}

// Options configures the SMTP connection and email contents.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// FrontendURL is the base for the links embedded in outgoing emails.
	FrontendURL string
}

// New creates an SMTPMailer from the given options.
func New(opts Options) (*SMTPMailer, error) {
	clientOpts := []gomail.Option{gomail.WithPort(opts.Port)}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(opts.Username),
			gomail.WithPassword(opts.Password),
		)
	}

	client, err := gomail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		from:        opts.From,
		frontendURL: opts.FrontendURL,
	}, nil
}

// SendVerificationEmail mails the link a new user follows to verify their address.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"Welcome!\n\nPlease confirm your email address by opening the link below:\n\n%s/verify-email?token=%s\n",
		m.frontendURL, token,
	)
	return m.send(ctx, to, "Confirm your email address", body)
}

// SendPasswordResetEmail mails the link a user follows to choose a new password.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nOpen the link below to choose a new password:\n\n%s/password-reset?token=%s\n\nIf you did not request this, you can ignore this email.\n",
		m.frontendURL, token,
	)
	return m.send(ctx, to, "Reset your password", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return m.client.DialAndSendWithContext(ctx, msg)
}
