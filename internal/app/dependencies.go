package app

import (
	"fmt"
	"time"

	"github.com/clubbrunch/brunch/internal/auth"
	"github.com/clubbrunch/brunch/internal/config"
	"github.com/clubbrunch/brunch/internal/event_bus"
	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/feed"
	"github.com/clubbrunch/brunch/pkg/item"
	"github.com/clubbrunch/brunch/pkg/mailing"
	"github.com/clubbrunch/brunch/pkg/pager"
	"github.com/clubbrunch/brunch/pkg/registration"
	"github.com/clubbrunch/brunch/pkg/reset"
	"github.com/clubbrunch/brunch/pkg/roster"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/clubbrunch/brunch/web"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock       utils.Clock
	Location    *time.Location
	EventBus    *event_bus.EventBus
	Renderer    *rest.Renderer
	Credentials auth.Credentials

	ScheduleService *schedule.ServiceImpl
	ScheduleHandler *schedule.Handler

	ItemService *item.ServiceImpl
	ItemHandler *item.Handler

	RegistrationService      *registration.ServiceImpl
	RegistrationHandler      *registration.Handler
	RegistrationAdminHandler *registration.AdminHandler

	ResetJob *reset.Job

	RosterService *roster.Service
	RosterHandler *roster.Handler

	MailingService *mailing.Service
	MailingHandler *mailing.Handler

	PagerNotifier *pager.Notifier

	FeedService *feed.Service
	FeedHandler *feed.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application, credentials auth.Credentials) (*Dependencies, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	renderer, err := rest.NewRenderer(web.Templates, web.TemplatesDir)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Clock:       utils.SystemClock{Location: loc},
		Location:    loc,
		EventBus:    event_bus.NewEventBus(),
		Renderer:    renderer,
		Credentials: credentials,
	}

	deps.ScheduleService = schedule.NewService(schedule.NewRepository(db), schedule.NewResolver(loc), deps.Clock)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService, renderer)

	deps.ItemService = item.NewService(item.NewRepository(db))
	deps.ItemHandler = item.NewHandler(deps.ItemService)

	deps.RegistrationService = registration.NewService(registration.NewRepository(db), deps.ItemService,
		deps.ScheduleService, deps.EventBus, deps.Clock)
	deps.RegistrationHandler = registration.NewHandler(deps.RegistrationService, deps.ScheduleService, renderer)
	deps.RegistrationAdminHandler = registration.NewAdminHandler(deps.RegistrationService, deps.ScheduleService,
		deps.ItemService, renderer)

	deps.ResetJob = reset.NewJob(cfg.Reset, loc, deps.ScheduleService, deps.RegistrationService, deps.EventBus, deps.Clock)

	deps.RosterService = roster.NewService(deps.RegistrationService, deps.ScheduleService, renderer,
		roster.NewChromePrinter(cfg.Roster.Timeout))
	deps.RosterHandler = roster.NewHandler(deps.RosterService)

	deps.MailingService = mailing.NewService(mailing.NewSender(cfg.Mail), cfg.Mail.MailingList, deps.ScheduleService, cfg.Host)
	deps.MailingHandler = mailing.NewHandler(deps.MailingService, renderer)

	if cfg.Pager.Enabled {
		deps.PagerNotifier = pager.NewNotifier(pager.NewClient(cfg.Pager))
	}

	deps.FeedService = feed.NewService(deps.ScheduleService, deps.Clock, cfg.Feed.Occurrences, cfg.Host)
	deps.FeedHandler = feed.NewHandler(deps.FeedService)

	return deps, nil
}
