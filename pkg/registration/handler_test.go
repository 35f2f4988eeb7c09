package registration

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/clubbrunch/brunch/internal/rest"
	"github.com/clubbrunch/brunch/web"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlers(t *testing.T, now time.Time) (*Handler, *AdminHandler, fixture) {
	t.Helper()
	renderer, err := rest.NewRenderer(web.Templates, web.TemplatesDir)
	require.NoError(t, err)
	f := setupService(t, now)
	itemService := f.service.items
	return NewHandler(f.service, f.schedule, renderer), NewAdminHandler(f.service, f.schedule, itemService, renderer), f
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withUid(req *http.Request, uid string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"uid": uid})
}

func TestHandler_Index(t *testing.T) {
	handler, _, f := setupHandlers(t, beforeDeadline)
	_, err := f.service.Register(ctx, SignUp{Name: "Anna", SelectedItem: "Kaffee"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<b id="event-date">17.03.2024</b>`)
	assert.Contains(t, body, `<span id="participant-count">1</span>`)
	assert.Contains(t, body, `<option value="Brötchen">`)
	assert.NotContains(t, body, `<option value="Kaffee">`)
	assert.NotContains(t, body, `id="closed"`)
}

func TestHandler_IndexWhenClosed(t *testing.T) {
	handler, _, _ := setupHandlers(t, time.Date(2024, time.March, 16, 9, 0, 0, 0, berlin))

	w := httptest.NewRecorder()
	handler.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="closed"`)
	assert.NotContains(t, w.Body.String(), `name="selected_item"`)
}

func TestHandler_SignUp(t *testing.T) {
	t.Run("registers the member", func(t *testing.T) {
		handler, _, f := setupHandlers(t, beforeDeadline)

		w := httptest.NewRecorder()
		handler.SignUp(w, postForm("/", url.Values{
			"name":            {"Anna"},
			"selected_item":   {"Kaffee"},
			"for_coffee_only": {"on"},
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `id="success"`)
		registrations, _ := f.service.List(ctx)
		require.Len(t, registrations, 1)
		assert.True(t, registrations[0].CoffeeOnly)
	})

	t.Run("redirects a known name to the delete confirmation", func(t *testing.T) {
		handler, _, f := setupHandlers(t, beforeDeadline)
		anna, err := f.service.Register(ctx, SignUp{Name: "Anna"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		handler.SignUp(w, postForm("/", url.Values{"name": {"Anna"}}))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/confirm_delete/"+anna.Uid, w.Header().Get("Location"))
	})

	t.Run("rejects an invalid name", func(t *testing.T) {
		handler, _, _ := setupHandlers(t, beforeDeadline)

		w := httptest.NewRecorder()
		handler.SignUp(w, postForm("/", url.Values{"name": {"Robert'); DROP TABLE"}}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `id="error"`)
	})

	t.Run("refuses registrations for a cancelled event", func(t *testing.T) {
		handler, _, f := setupHandlers(t, beforeDeadline)
		require.NoError(t, f.schedule.UpdateSchedule(ctx, "", true))

		w := httptest.NewRecorder()
		handler.SignUp(w, postForm("/", url.Values{"name": {"Anna"}}))

		assert.Equal(t, http.StatusConflict, w.Code)
		count, _ := f.service.Count(ctx)
		assert.Equal(t, 0, count)
	})
}

func TestHandler_ConfirmDelete(t *testing.T) {
	handler, _, f := setupHandlers(t, beforeDeadline)
	anna, err := f.service.Register(ctx, SignUp{Name: "Anna"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ConfirmDeletePage(w, withUid(httptest.NewRequest(http.MethodGet, "/confirm_delete/"+anna.Uid, nil), anna.Uid))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<b>Anna</b>")

	w = httptest.NewRecorder()
	handler.ConfirmDelete(w, withUid(postForm("/confirm_delete/"+anna.Uid, url.Values{}), anna.Uid))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	handler.ConfirmDeletePage(w, withUid(httptest.NewRequest(http.MethodGet, "/confirm_delete/"+anna.Uid, nil), anna.Uid))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_AdminPage(t *testing.T) {
	_, admin, f := setupHandlers(t, beforeDeadline)
	_, err := f.service.Register(ctx, SignUp{Name: "Anna", SelectedItem: "Kaffee", CoffeeOnly: true})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	admin.AdminPage(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "17.03.2024")
	assert.Contains(t, body, "Anna")
	assert.Contains(t, body, "Ja")
	assert.Contains(t, body, "Marmelade")
}

func TestAdminHandler_Update(t *testing.T) {
	_, admin, f := setupHandlers(t, beforeDeadline)
	anna, _ := f.service.Register(ctx, SignUp{Name: "Anna"})

	w := httptest.NewRecorder()
	admin.Update(w, withUid(postForm("/admin/registration/"+anna.Uid, url.Values{"name": {"Anna B"}, "item": {"Brot"}}), anna.Uid))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	updated, _ := f.service.Get(ctx, anna.Uid)
	assert.Equal(t, "Anna B", updated.Name)
	assert.Equal(t, "Brot", updated.Item)

	w = httptest.NewRecorder()
	admin.Update(w, withUid(postForm("/admin/registration/"+anna.Uid, url.Values{"name": {"<script>"}}), anna.Uid))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `id="error"`)
}

func TestAdminHandler_Delete(t *testing.T) {
	_, admin, f := setupHandlers(t, beforeDeadline)
	anna, _ := f.service.Register(ctx, SignUp{Name: "Anna"})

	w := httptest.NewRecorder()
	admin.Delete(w, withUid(postForm("/admin/registration/"+anna.Uid+"/delete", url.Values{}), anna.Uid))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	count, _ := f.service.Count(ctx)
	assert.Equal(t, 0, count)
}

func TestAdminHandler_ExportCsv(t *testing.T) {
	_, admin, f := setupHandlers(t, beforeDeadline)
	_, _ = f.service.Register(ctx, SignUp{Name: "Anna", SelectedItem: "Kaffee"})

	w := httptest.NewRecorder()
	admin.ExportCsv(w, httptest.NewRequest(http.MethodGet, "/admin/roster.csv", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "brunch_2024-03-17.csv")
	assert.Contains(t, w.Body.String(), "Anna,Kaffee,Nein")
}
