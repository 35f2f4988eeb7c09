package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*Handler, *ServiceImpl) {
	t.Helper()
	renderer, err := rest.NewRenderer(web.Templates, web.TemplatesDir)
	require.NoError(t, err)
	service, _, _ := setupService(t, at(2024, time.March, 1, 10, 0, 0))
	return NewHandler(service, renderer), service
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/admin/schedule", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandler_GetStatus(t *testing.T) {
	handler, service := setupHandlerTest(t)
	require.NoError(t, service.UpdateSchedule(ctx, "10.03.2024", true))

	w := httptest.NewRecorder()
	handler.GetStatus(w, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var dto StatusDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, StatusDTO{EventDate: "10.03.2024", OverrideDate: "10.03.2024", Cancelled: true, Open: false}, dto)
}

func TestHandler_SchedulePage(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	w := httptest.NewRecorder()
	handler.SchedulePage(w, httptest.NewRequest(http.MethodGet, "/admin/schedule", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "17.03.2024")
}

func TestHandler_UpdateSchedule(t *testing.T) {
	t.Run("stores override and cancellation", func(t *testing.T) {
		handler, service := setupHandlerTest(t)

		w := httptest.NewRecorder()
		handler.UpdateSchedule(w, postForm(url.Values{"override_date": {"10.03.2024"}, "cancelled": {"on"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `id="saved"`)
		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, "10.03.2024", status.EventDate)
		assert.True(t, status.Cancelled)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		handler, service := setupHandlerTest(t)
		require.NoError(t, service.UpdateSchedule(ctx, "10.03.2024", false))

		w := httptest.NewRecorder()
		handler.UpdateSchedule(w, postForm(url.Values{"override_date": {"tomorrow"}}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `id="error"`)
		status, err := service.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", status.OverrideDate)
		assert.Equal(t, "17.03.2024", status.EventDate)
	})
}
