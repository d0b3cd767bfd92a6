package app

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/officehours/officehours/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

const (
	actorHeader     = "X-Actor"
	requestIdHeader = "X-Request-Id"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Request id, access log and metrics
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			requestId := req.Header.Get(requestIdHeader)
			if requestId == "" {
				requestId = uuid.NewString()
			}
			w.Header().Set(requestIdHeader, requestId)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)

			route := req.URL.Path
			if current := mux.CurrentRoute(req); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			duration := time.Since(start)
			deps.Metrics.ObserveRequest(req.Method, route, rec.status, duration)
			log.WithFields(log.Fields{
				"request_id": requestId,
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     rec.status,
				"duration":   duration,
			}).Debug("handled request")
		})
	})

	// Propagate X-Actor header into context so schedule updates name who made them
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if actor := req.Header.Get(actorHeader); actor != "" {
				log.Debugf("request made by %s", actor)
				ctx = schedule.WithActor(ctx, actor)
			} else {
				ctx = schedule.WithActor(ctx, "Web user")
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
