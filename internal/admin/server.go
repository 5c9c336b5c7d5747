// Package admin exposes the operator HTTP surface: health, metrics, record
// inspection, manual retry, and consumer control.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"legalease-notifications/internal/common/errors"
	"legalease-notifications/internal/common/logger"
	"legalease-notifications/internal/consumer"
	"legalease-notifications/internal/dispatcher"
	"legalease-notifications/internal/models"
	"legalease-notifications/internal/store"
)

// Retrier re-attempts a failed notification. Implemented by
// dispatcher.Dispatcher.
type Retrier interface {
	Retry(ctx context.Context, recordID string) dispatcher.Result
}

// ConsumerControl is the operator handle on the event loop.
type ConsumerControl interface {
	Start(ctx context.Context) error
	Stop()
	Status() consumer.Status
}

var (
	_ Retrier         = (*dispatcher.Dispatcher)(nil)
	_ ConsumerControl = (*consumer.Consumer)(nil)
)

type Server struct {
	records  store.RecordStore
	retrier  Retrier
	consumer ConsumerControl
	logger   logger.Logger
}

func NewServer(records store.RecordStore, retrier Retrier, control ConsumerControl, log logger.Logger) *Server {
	return &Server{
		records:  records,
		retrier:  retrier,
		consumer: control,
		logger:   log.WithFields(map[string]interface{}{"component": "admin"}),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/notifications", s.handleList)
		r.Get("/notifications/{id}", s.handleGet)
		r.Post("/notifications/{id}/retry", s.handleRetry)

		r.Get("/consumer/status", s.handleConsumerStatus)
		r.Post("/consumer/start", s.handleConsumerStart)
		r.Post("/consumer/stop", s.handleConsumerStop)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		records []*models.Notification
		err     error
	)
	switch {
	case userID != "":
		records, err = s.records.ListByUser(r.Context(), userID, limit)
	case status != "":
		if !models.ValidStatus(models.NotificationStatus(status)) {
			s.respond(w, http.StatusBadRequest, map[string]string{"error": "unknown status: " + status})
			return
		}
		records, err = s.records.ListByStatus(r.Context(), models.NotificationStatus(status), limit)
	default:
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "user_id or status query parameter required"})
		return
	}
	if err != nil {
		s.logger.Error("list notifications", map[string]interface{}{"error": err})
		s.respond(w, http.StatusInternalServerError, errors.NewQueryExecutionFailedError("list notifications", err))
		return
	}
	if records == nil {
		records = []*models.Notification{}
	}
	s.respond(w, http.StatusOK, map[string]interface{}{"notifications": records, "count": len(records)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := s.records.Get(r.Context(), id)
	if err == store.ErrNotFound {
		s.respond(w, http.StatusNotFound, errors.NewRecordNotFoundError(id))
		return
	}
	if err != nil {
		s.logger.Error("get notification", map[string]interface{}{"error": err, "id": id})
		s.respond(w, http.StatusInternalServerError, errors.NewQueryExecutionFailedError("get notification", err))
		return
	}
	s.respond(w, http.StatusOK, n)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res := s.retrier.Retry(r.Context(), id)

	if !res.Success && res.NotificationID == "" {
		// The claim failed; distinguish a missing record from an ineligible one.
		if _, err := s.records.Get(r.Context(), id); err == store.ErrNotFound {
			s.respond(w, http.StatusNotFound, errors.NewRecordNotFoundError(id))
			return
		}
		s.respond(w, http.StatusConflict, errors.NewRetryNotPermittedError(id, res.Message))
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	s.respond(w, status, res)
}

func (s *Server) handleConsumerStatus(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.consumer.Status())
}

func (s *Server) handleConsumerStart(w http.ResponseWriter, r *http.Request) {
	if err := s.consumer.Start(r.Context()); err != nil {
		s.respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	s.respond(w, http.StatusOK, s.consumer.Status())
}

func (s *Server) handleConsumerStop(w http.ResponseWriter, r *http.Request) {
	s.consumer.Stop()
	s.respond(w, http.StatusOK, s.consumer.Status())
}

func (s *Server) respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", map[string]interface{}{"error": err})
	}
}
