package roster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/clubbrunch/brunch/pkg/registration"
	"github.com/clubbrunch/brunch/pkg/schedule"
	"github.com/clubbrunch/brunch/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type printerStub struct {
	html string
	err  error
}

func (p *printerStub) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.html = html
	return []byte("%PDF-1.4 roster"), nil
}

type registrationsStub []registration.Registration

func (r registrationsStub) List(ctx context.Context) ([]registration.Registration, error) {
	return r, nil
}

func setupRoster(t *testing.T, registrations ...registration.Registration) (*Service, *printerStub, *schedule.ServiceImpl) {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	renderer, err := rest.NewRenderer(web.Templates, web.TemplatesDir)
	require.NoError(t, err)
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.March, 1, 10, 0, 0, 0, berlin)}
	scheduleService := schedule.NewService(schedule.NewRepositoryStub(), schedule.NewResolver(berlin), clock)
	printer := &printerStub{}
	return NewService(registrationsStub(registrations), scheduleService, renderer, printer), printer, scheduleService
}

func TestService_Build(t *testing.T) {
	service, _, _ := setupRoster(t,
		registration.Registration{Name: "Anna", Item: "Kaffee"},
		registration.Registration{Name: "Max", CoffeeOnly: true},
		registration.Registration{Name: "Eva", CoffeeOnly: true},
	)

	roster, err := service.Build(ctx)

	require.NoError(t, err)
	assert.Equal(t, "17.03.2024", roster.EventDate)
	assert.Equal(t, 3, roster.Total)
	assert.Equal(t, 2, roster.CoffeeOnly)
}

func TestService_HTML(t *testing.T) {
	service, _, scheduleService := setupRoster(t, registration.Registration{Name: "Anna", Item: "Brötchen"})
	require.NoError(t, scheduleService.UpdateSchedule(ctx, "", true))
	roster, err := service.Build(ctx)
	require.NoError(t, err)

	html, err := service.HTML(roster)

	require.NoError(t, err)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Teilnehmerliste Brunch 17.03.2024</title>")
	assert.Contains(t, html, "(abgesagt)")
	assert.Contains(t, html, "<td>1</td><td>Anna</td><td>Brötchen</td><td>Nein</td>")
	assert.Contains(t, html, "Teilnehmer: 1, davon nur zum Kaffee: 0")
	assert.NotContains(t, html, "tailwind", "the roster is printed without the site layout")
}

func TestHandler_DownloadPDF(t *testing.T) {
	service, printer, _ := setupRoster(t, registration.Registration{Name: "Anna"})

	w := httptest.NewRecorder()
	NewHandler(service).DownloadPDF(w, httptest.NewRequest(http.MethodGet, "/admin/roster.pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="teilnehmerliste_17-03-2024.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 roster", w.Body.String())
	assert.Contains(t, printer.html, "Anna")
}

func TestHandler_DownloadPDFPrinterFailure(t *testing.T) {
	service, printer, _ := setupRoster(t)
	printer.err = errors.New("chrome not found")

	w := httptest.NewRecorder()
	NewHandler(service).DownloadPDF(w, httptest.NewRequest(http.MethodGet, "/admin/roster.pdf", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
