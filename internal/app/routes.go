package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Schedule
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.GetSchedule).Methods("GET")
	r.HandleFunc("/api/schedule/week", deps.ScheduleHandler.GetWeek).Methods("GET")
	r.HandleFunc("/api/schedule/default", deps.ScheduleHandler.SetDefault).Methods("POST")
	r.HandleFunc("/api/schedule/override", deps.ScheduleHandler.SetOverride).Methods("POST")
	r.HandleFunc("/api/schedule/override/week", deps.ScheduleHandler.SetWeekOverride).Methods("POST")
	r.HandleFunc("/api/schedule/override/{month:[0-9]{1,2}}/{day:[0-9]{1,2}}", deps.ScheduleHandler.ClearOverrides).Methods("DELETE")

	// Metrics
	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")

	// Viewer
	r.HandleFunc("/", deps.ViewerHandler.CurrentWeek).Methods("GET")
	r.HandleFunc("/next-week", deps.ViewerHandler.NextWeek).Methods("GET")
}
