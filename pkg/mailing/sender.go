package mailing

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubbrunch/brunch/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

var ErrMailDisabled = errors.New("mailing is disabled")

type Sender interface {
	Send(ctx context.Context, recipients []string, msg Rendered) error
}

// NewSender returns an SMTP sender, or a sender refusing every mail when mailing is disabled.
func NewSender(cfg config.Mail) Sender {
	if !cfg.Enabled {
		return DisabledSender{}
	}
	return &SmtpSender{cfg: cfg}
}

type DisabledSender struct{}

func (DisabledSender) Send(ctx context.Context, recipients []string, msg Rendered) error {
	return ErrMailDisabled
}

type SmtpSender struct {
	cfg config.Mail
}

// Send delivers one mail with every recipient in Bcc, so members do not see each other.
func (s *SmtpSender) Send(ctx context.Context, recipients []string, msg Rendered) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.Bcc(recipients...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	options := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.User != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Pass),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, options...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	log.Infof("Mail %q sent to %d recipients", msg.Subject, len(recipients))
	return nil
}
