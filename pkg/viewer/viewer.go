package viewer

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/officehours/officehours/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/week.html
var templates embed.FS

var weekTemplate = template.Must(template.ParseFS(templates, "templates/week.html"))

type weekPage struct {
	Title    string
	Heading  string
	NextWeek bool
	Days     []schedule.EffectiveDay
}

// Handler renders the effective week as an HTML table.
type Handler struct {
	service schedule.Service
	title   string
}

func NewHandler(service schedule.Service, title string) *Handler {
	return &Handler{service: service, title: title}
}

// CurrentWeek serves GET /.
func (h *Handler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.service.CurrentWeekStart(), false)
}

// NextWeek serves GET /next-week.
func (h *Handler) NextWeek(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.service.CurrentWeekStart().AddDate(0, 0, 7), true)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, weekStart time.Time, next bool) {
	days, err := h.service.EffectiveWeek(r.Context(), weekStart)
	if err != nil {
		log.Errorf("failed to resolve week of %s: %v", schedule.DateKey(weekStart), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := weekPage{
		Title:    h.title,
		Heading:  "Week of " + weekStart.Format("January 2, 2006"),
		NextWeek: next,
		Days:     days,
	}

	var buf bytes.Buffer
	if err := weekTemplate.Execute(&buf, page); err != nil {
		log.Errorf("failed to render week page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
