package httpapi

import (
	"context"
	"net/http"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/usecase"
	"ridenow-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RideService is the orchestrator surface exposed over HTTP
type RideService interface {
	CreateRide(ctx context.Context, req usecase.CreateRideRequest) (*entity.Ride, error)
	GetRide(ctx context.Context, id int64) (*entity.Ride, error)
	ListRideEvents(ctx context.Context, id int64) ([]*entity.RideEvent, error)
	CaptureRidePayment(ctx context.Context, id int64) (*entity.PaymentResult, error)
}

const requestIDHeader = "X-Request-ID"

// Handler serves the ride API
type Handler struct {
	rides  RideService
	logger logger.Logger
}

// NewRouter wires the ride API, health and metrics endpoints
func NewRouter(rides RideService, gatherer prometheus.Gatherer, log logger.Logger) http.Handler {
	h := &Handler{
		rides:  rides,
		logger: log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/rides", h.createRide).Methods(http.MethodPost)
	r.HandleFunc("/rides/{id}", h.getRide).Methods(http.MethodGet)
	r.HandleFunc("/rides/{id}/events", h.listRideEvents).Methods(http.MethodGet)
	r.HandleFunc("/rides/{id}/payment/capture", h.captureRidePayment).Methods(http.MethodPost)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return h.logMiddleware(r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info("Handled request",
			"requestId", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remoteAddr", r.RemoteAddr,
			"duration", time.Since(started).String(),
		)
	})
}
