package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/officehours/officehours/internal/rest"
	log "github.com/sirupsen/logrus"
)

type EffectiveDayDTO struct {
	Day        string `json:"day"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Display    string `json:"display"`
	Overridden bool   `json:"overridden"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetSchedule returns the whole stored document.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, doc)
}

// GetWeek returns the effective schedule for the week containing ?date=MM/DD, or the
// current week when date is omitted.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	weekStart := h.service.CurrentWeekStart()
	if date := r.URL.Query().Get("date"); date != "" {
		var err error
		weekStart, err = h.service.WeekStartFor(date)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	days, err := h.service.EffectiveWeek(r.Context(), weekStart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]EffectiveDayDTO, 0, len(days))
	for _, day := range days {
		dtos = append(dtos, EffectiveDayToDTO(day))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// SetDefault accepts {"day": "Monday", "time": "..."} or a bulk {"Monday": "...", ...}.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	if day, isSingle := singleDay(payload); isSingle {
		timeRange, err := rawString(payload["time"])
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid time", err.Error())
			return
		}
		doc, err := h.service.SetDefault(r.Context(), day, timeRange)
		h.respond(w, doc, err)
		return
	}

	times, err := stringMap(payload)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	doc, err := h.service.SetDefaultBulk(r.Context(), times)
	h.respond(w, doc, err)
}

// SetOverride accepts {"date", "day", "time"} or {"date", "updates": {...}}.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	date, dateErr := rawString(payload["date"])
	if _, hasDate := payload["date"]; !hasDate || dateErr != nil {
		rest.WriteError(w, http.StatusBadRequest, "Expected {date, day, time} or {date, updates}", "")
		return
	}

	if day, isSingle := singleDay(payload); isSingle {
		timeRange, err := rawString(payload["time"])
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid time", err.Error())
			return
		}
		doc, err := h.service.SetOverride(r.Context(), date, day, timeRange)
		h.respond(w, doc, err)
		return
	}

	rawUpdates, hasUpdates := payload["updates"]
	if !hasUpdates {
		rest.WriteError(w, http.StatusBadRequest, "Expected {date, day, time} or {date, updates}", "")
		return
	}
	updates, err := decodeStringMap(rawUpdates)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Expected {date, day, time} or {date, updates}", err.Error())
		return
	}
	doc, err := h.service.SetOverrides(r.Context(), date, updates)
	h.respond(w, doc, err)
}

// SetWeekOverride accepts {"monday": "MM/DD", "times": {...}}.
func (h *Handler) SetWeekOverride(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeObject(w, r)
	if !ok {
		return
	}

	const expected = "Expected {monday: 'MM/DD', times: {Monday..Friday}}"
	rawMonday, hasMonday := payload["monday"]
	rawTimes, hasTimes := payload["times"]
	if !hasMonday || !hasTimes {
		rest.WriteError(w, http.StatusBadRequest, expected, "")
		return
	}
	monday, err := rawString(rawMonday)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, expected, err.Error())
		return
	}
	times, err := decodeStringMap(rawTimes)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, expected, err.Error())
		return
	}

	doc, err := h.service.SetWeek(r.Context(), monday, times)
	h.respond(w, doc, err)
}

// ClearOverrides removes every override stored under /override/{month}/{day}.
func (h *Handler) ClearOverrides(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date := vars["month"] + "/" + vars["day"]
	doc, err := h.service.ClearOverrides(r.Context(), date)
	h.respond(w, doc, err)
}

func (h *Handler) respond(w http.ResponseWriter, doc Document, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDay):
		rest.WriteError(w, http.StatusBadRequest, "Invalid day", err.Error())
	case errors.Is(err, ErrInvalidDate):
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
	default:
		log.Errorf("schedule request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func EffectiveDayToDTO(day EffectiveDay) EffectiveDayDTO {
	return EffectiveDayDTO{
		Day:        day.Day,
		Date:       day.DateKey,
		Time:       day.Time,
		Display:    day.DisplayTime(),
		Overridden: day.Overridden,
	}
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, bool) {
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid JSON body", "Request body must be a JSON object")
		return nil, false
	}
	return payload, true
}

// singleDay reports whether payload has the {day, time} shape.
func singleDay(payload map[string]json.RawMessage) (string, bool) {
	rawDay, hasDay := payload["day"]
	_, hasTime := payload["time"]
	if !hasDay || !hasTime {
		return "", false
	}
	var day string
	if err := json.Unmarshal(rawDay, &day); err != nil {
		return "", false
	}
	return day, true
}

func decodeStringMap(raw json.RawMessage) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("expected an object of day to time")
	}
	return stringMap(obj)
}

func stringMap(obj map[string]json.RawMessage) (map[string]string, error) {
	result := make(map[string]string, len(obj))
	for key, raw := range obj {
		value, err := rawString(raw)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		result[key] = value
	}
	return result, nil
}

// rawString reads a JSON scalar as text: strings as-is, numbers and booleans as their
// literal, null as empty.
func rawString(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("expected a string")
	default:
		return trimmed, nil
	}
}
