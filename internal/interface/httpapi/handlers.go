package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ridenow-service/internal/usecase"
	"ridenow-service/pkg/utils"

	"github.com/gorilla/mux"
)

type errorBody struct {
	Kind         string `json:"kind"`
	Collaborator string `json:"collaborator,omitempty"`
	RideID       int64  `json:"rideId,omitempty"`
	Message      string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (h *Handler) createRide(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &usecase.OrchestrationError{
			Kind: usecase.KindInvalidRequest,
			Err:  fmt.Errorf("malformed request body: %w", err),
		})
		return
	}

	ride, err := h.rides.CreateRide(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (h *Handler) getRide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rideID(w, r)
	if !ok {
		return
	}

	ride, err := h.rides.GetRide(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (h *Handler) listRideEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rideID(w, r)
	if !ok {
		return
	}

	events, err := h.rides.ListRideEvents(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) captureRidePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.rideID(w, r)
	if !ok {
		return
	}

	result, err := h.rides.CaptureRidePayment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "ride"})
}

func (h *Handler) rideID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, ok := utils.ParseID(raw)
	if !ok {
		h.writeError(w, &usecase.OrchestrationError{
			Kind: usecase.KindInvalidRequest,
			Err:  fmt.Errorf("invalid ride id %q", raw),
		})
	}
	return id, ok
}

// StatusFor maps an orchestrator error to an HTTP status
func StatusFor(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindNoAvailableDriver, usecase.KindNoPriceForRoute, usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindInvalidRequest:
		return http.StatusBadRequest
	case usecase.KindStateConflict:
		return http.StatusConflict
	case usecase.KindUpstreamUnavailable, usecase.KindPaymentAuthorizationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Kind: string(usecase.KindPersistenceFailure), Message: err.Error()}

	var oe *usecase.OrchestrationError
	if errors.As(err, &oe) {
		body.Kind = string(oe.Kind)
		body.Collaborator = oe.Collaborator
		body.RideID = oe.RideID
	}

	status := StatusFor(usecase.ErrorKind(body.Kind))
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "kind", body.Kind, "collaborator", body.Collaborator, "rideId", body.RideID, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
