package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/officehours/officehours/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *ServiceImpl) {
	t.Helper()
	service, _, _, _ := setupService(t)
	handler := NewHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/schedule", handler.GetSchedule).Methods("GET")
	r.HandleFunc("/api/schedule/week", handler.GetWeek).Methods("GET")
	r.HandleFunc("/api/schedule/default", handler.SetDefault).Methods("POST")
	r.HandleFunc("/api/schedule/override", handler.SetOverride).Methods("POST")
	r.HandleFunc("/api/schedule/override/week", handler.SetWeekOverride).Methods("POST")
	r.HandleFunc("/api/schedule/override/{month}/{day}", handler.ClearOverrides).Methods("DELETE")
	return r, service
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeDocument(t *testing.T, w *httptest.ResponseRecorder) Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	return doc
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var errResponse rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
	return errResponse
}

func TestHandler_GetSchedule(t *testing.T) {
	t.Run("should return the full document", func(t *testing.T) {
		// given
		r, service := setupHandlerTest(t)
		_, err := service.SetOverride(context.Background(), "09/01", "Monday", "CLOSED")
		require.NoError(t, err)

		// when
		w := doRequest(r, http.MethodGet, "/api/schedule", "")

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		doc := decodeDocument(t, w)
		assert.Len(t, doc.Default, 5)
		assert.Equal(t, "CLOSED", doc.Overrides["09/01"]["Monday"])
	})
}

func TestHandler_SetDefault(t *testing.T) {
	t.Run("should set a single day", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/default", `{"day": "monday", "time": "2:00 PM - 5:00 PM"}`)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2:00 PM - 5:00 PM", decodeDocument(t, w).Default["Monday"])
	})

	t.Run("should set several days at once", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/default", `{"Tuesday": "a", "Thursday": null}`)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		doc := decodeDocument(t, w)
		assert.Equal(t, "a", doc.Default["Tuesday"])
		assert.Equal(t, "", doc.Default["Thursday"])
	})

	t.Run("should reject an unknown day with 400 and leave state untouched", func(t *testing.T) {
		// given
		r, service := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/default", `{"Monday": "a", "Saturday": "b"}`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid day", decodeError(t, w).Error)
		doc, _ := service.GetDocument(context.Background())
		assert.Equal(t, "", doc.Default["Monday"])
	})

	t.Run("should reject a body that is not an object", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/default", `["Monday"]`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid JSON body", decodeError(t, w).Error)
	})
}

func TestHandler_SetOverride(t *testing.T) {
	t.Run("should set a single override", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override", `{"date": "9/3", "day": "Wednesday", "time": "CLOSED (Holiday)"}`)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "CLOSED (Holiday)", decodeDocument(t, w).Overrides["09/03"]["Wednesday"])
	})

	t.Run("should set several overrides for a date", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override", `{"date": "09/01", "updates": {"Monday": "x", "Tuesday": "y"}}`)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"Monday": "x", "Tuesday": "y"}, decodeDocument(t, w).Overrides["09/01"])
	})

	t.Run("should reject a body without date", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override", `{"day": "Monday", "time": "x"}`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Expected {date, day, time} or {date, updates}", decodeError(t, w).Error)
	})

	t.Run("should reject a body with neither day nor updates", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override", `{"date": "09/01"}`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject an invalid date", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override", `{"date": "31/12", "day": "Monday", "time": "x"}`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid date", decodeError(t, w).Error)
	})
}

func TestHandler_SetWeekOverride(t *testing.T) {
	t.Run("should store the week under its Monday", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override/week", `{"monday": "09/01", "times": {"Monday": "a", "Friday": "b"}}`)

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"Monday": "a", "Friday": "b"}, decodeDocument(t, w).Overrides["09/01"])
	})

	t.Run("should reject a body without times", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodPost, "/api/schedule/override/week", `{"monday": "09/01"}`)

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ClearOverrides(t *testing.T) {
	t.Run("should drop the overrides of the date in the path", func(t *testing.T) {
		// given
		r, service := setupHandlerTest(t)
		_, err := service.SetOverride(context.Background(), "09/02", "Tuesday", "x")
		require.NoError(t, err)

		// when
		w := doRequest(r, http.MethodDelete, "/api/schedule/override/9/2", "")

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeDocument(t, w).Overrides)
	})
}

func TestHandler_GetWeek(t *testing.T) {
	t.Run("should return the resolved week for a date", func(t *testing.T) {
		// given
		r, service := setupHandlerTest(t)
		ctx := context.Background()
		_, err := service.SetDefault(ctx, "Monday", "2:00 PM - 5:00 PM")
		require.NoError(t, err)
		_, err = service.SetOverride(ctx, "09/09", "Tuesday", "CLOSED")
		require.NoError(t, err)

		// when
		w := doRequest(r, http.MethodGet, "/api/schedule/week?date=09/10", "")

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var days []EffectiveDayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&days))
		require.Len(t, days, 5)
		assert.Equal(t, EffectiveDayDTO{Day: "Monday", Date: "09/08", Time: "2:00 PM - 5:00 PM", Display: "2:00 PM - 5:00 PM"}, days[0])
		assert.Equal(t, EffectiveDayDTO{Day: "Tuesday", Date: "09/09", Time: "CLOSED", Display: "CLOSED", Overridden: true}, days[1])
		assert.Equal(t, EmptyTimePlaceholder, days[2].Display)
	})

	t.Run("should default to the current week", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodGet, "/api/schedule/week", "")

		// then
		assert.Equal(t, http.StatusOK, w.Code)
		var days []EffectiveDayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&days))
		assert.Equal(t, "09/01", days[0].Date)
	})

	t.Run("should reject an invalid date", func(t *testing.T) {
		// given
		r, _ := setupHandlerTest(t)

		// when
		w := doRequest(r, http.MethodGet, "/api/schedule/week?date=tomorrow", "")

		// then
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
