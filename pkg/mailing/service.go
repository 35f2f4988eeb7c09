package mailing

import (
	"context"
	"errors"
	"strings"

	"github.com/clubbrunch/brunch/pkg/schedule"
)

var ErrEmptyMessage = errors.New("subject and body are required")
var ErrNoRecipients = errors.New("no mailing list configured")

type EventSchedule interface {
	Status(ctx context.Context) (schedule.Status, error)
}

type Service struct {
	sender     Sender
	recipients []string
	schedule   EventSchedule
	signUpUrl  string
}

func NewService(sender Sender, recipients []string, schedule EventSchedule, signUpUrl string) *Service {
	return &Service{
		sender:     sender,
		recipients: recipients,
		schedule:   schedule,
		signUpUrl:  signUpUrl,
	}
}

func (s *Service) Recipients() []string {
	return s.recipients
}

// Draft prepares the invitation for the upcoming event.
func (s *Service) Draft(ctx context.Context) (Message, error) {
	status, err := s.schedule.Status(ctx)
	if err != nil {
		return Message{}, err
	}
	return DefaultDraft(status.EventDate, status.Cancelled, s.signUpUrl), nil
}

func (s *Service) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Body) == "" {
		return ErrEmptyMessage
	}
	if len(s.recipients) == 0 {
		return ErrNoRecipients
	}
	rendered, err := Render(msg)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, s.recipients, rendered)
}
