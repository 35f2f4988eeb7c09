package roster

import (
	"context"
	"fmt"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/pkg/registration"
	"github.com/clubbrunch/brunch/pkg/schedule"
)

const rosterPage = "roster.html"

// Roster is the printable participant list of the upcoming event.
type Roster struct {
	EventDate     string
	Cancelled     bool
	Registrations []registration.Registration
	Total         int
	CoffeeOnly    int
}

type RegistrationLister interface {
	List(ctx context.Context) ([]registration.Registration, error)
}

type EventSchedule interface {
	Status(ctx context.Context) (schedule.Status, error)
}

type Service struct {
	registrations RegistrationLister
	schedule      EventSchedule
	renderer      *rest.Renderer
	printer       Printer
}

func NewService(registrations RegistrationLister, schedule EventSchedule, renderer *rest.Renderer, printer Printer) *Service {
	return &Service{
		registrations: registrations,
		schedule:      schedule,
		renderer:      renderer,
		printer:       printer,
	}
}

func (s *Service) Build(ctx context.Context) (Roster, error) {
	status, err := s.schedule.Status(ctx)
	if err != nil {
		return Roster{}, err
	}
	registrations, err := s.registrations.List(ctx)
	if err != nil {
		return Roster{}, err
	}
	roster := Roster{
		EventDate:     status.EventDate,
		Cancelled:     status.Cancelled,
		Registrations: registrations,
		Total:         len(registrations),
	}
	for _, r := range registrations {
		if r.CoffeeOnly {
			roster.CoffeeOnly++
		}
	}
	return roster, nil
}

func (s *Service) HTML(roster Roster) (string, error) {
	return s.renderer.RenderString(rosterPage, "Teilnehmerliste Brunch "+roster.EventDate, roster)
}

// PDF renders the roster of the upcoming event and prints it.
func (s *Service) PDF(ctx context.Context) (Roster, []byte, error) {
	roster, err := s.Build(ctx)
	if err != nil {
		return Roster{}, nil, err
	}
	html, err := s.HTML(roster)
	if err != nil {
		return Roster{}, nil, fmt.Errorf("failed to render roster: %w", err)
	}
	pdf, err := s.printer.PrintPDF(ctx, html)
	if err != nil {
		return Roster{}, nil, fmt.Errorf("failed to print roster: %w", err)
	}
	return roster, pdf, nil
}
