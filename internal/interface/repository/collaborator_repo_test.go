package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientConfig(url string) CollaboratorClientConfig {
	return CollaboratorClientConfig{
		BaseURL:      url,
		Timeout:      2 * time.Second,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestDriverDirectoryRepository_ListAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/drivers", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("available"))
		assert.Equal(t, "A", r.URL.Query().Get("zone"))
		writeJSON(w, http.StatusOK, []entity.Driver{
			{ID: 7, Name: "Dan", Zone: "A", Available: true},
			{ID: 3, Name: "Eve", Zone: "A", Available: true},
		})
	}))
	defer srv.Close()

	repo := NewDriverDirectoryRepository(clientConfig(srv.URL), logger.NewNopLogger())
	drivers, err := repo.ListAvailable(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, int64(7), drivers[0].ID)
}

func TestDriverDirectoryRepository_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, []entity.Driver{})
	}))
	defer srv.Close()

	repo := NewDriverDirectoryRepository(clientConfig(srv.URL), logger.NewNopLogger())
	drivers, err := repo.ListAvailable(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, drivers)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDriverDirectoryRepository_Failures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad zone", http.StatusBadRequest)
		}))
		defer srv.Close()

		repo := NewDriverDirectoryRepository(clientConfig(srv.URL), logger.NewNopLogger())
		_, err := repo.ListAvailable(context.Background(), "A")
		assert.ErrorIs(t, err, entity.ErrUnexpectedResponse)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		cfg := clientConfig(url)
		cfg.RetryMax = 0
		repo := NewDriverDirectoryRepository(cfg, logger.NewNopLogger())
		_, err := repo.ListAvailable(context.Background(), "A")
		assert.ErrorIs(t, err, entity.ErrUnreachable)
	})
}

func TestDriverDirectoryRepository_SetAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		if r.URL.Path != "/drivers/7/availability" {
			http.Error(w, "driver not found", http.StatusNotFound)
			return
		}
		var body struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, entity.Driver{ID: 7, Zone: "A", Available: body.Available})
	}))
	defer srv.Close()

	repo := NewDriverDirectoryRepository(clientConfig(srv.URL), logger.NewNopLogger())

	driver, err := repo.SetAvailability(context.Background(), 7, false)
	require.NoError(t, err)
	assert.False(t, driver.Available)

	_, err = repo.SetAvailability(context.Background(), 8, true)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPricingRepository_GetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
		if from == "A" && to == "B" {
			writeJSON(w, http.StatusOK, entity.Price{FromZone: "a", ToZone: "b", Amount: 12.50, Currency: "CAD"})
			return
		}
		if from == "X" {
			writeJSON(w, http.StatusOK, entity.Price{FromZone: "X", ToZone: to, Amount: -1})
			return
		}
		http.Error(w, `{"detail":"no rule"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	repo := NewPricingRepository(clientConfig(srv.URL), logger.NewNopLogger())

	price, err := repo.GetPrice(context.Background(), " a", "b ")
	require.NoError(t, err)
	assert.Equal(t, 12.50, price.Amount)
	assert.Equal(t, "A", price.FromZone)
	assert.Equal(t, "B", price.ToZone)

	_, err = repo.GetPrice(context.Background(), "B", "A")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = repo.GetPrice(context.Background(), "X", "A")
	assert.ErrorIs(t, err, entity.ErrUnexpectedResponse)
}

func TestPaymentRepository_Authorize(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/payments/authorize", r.URL.Path)

		var req authorizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RideID == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, 12.50, req.Amount)
		assert.Equal(t, "CAD", req.Currency)
		writeJSON(w, http.StatusOK, entity.PaymentResult{PaymentID: 99, Status: entity.PaymentAuthorized})
	}))
	defer srv.Close()

	repo := NewPaymentRepository(clientConfig(srv.URL), logger.NewNopLogger())

	result, err := repo.Authorize(context.Background(), 1, 12.50, "CAD")
	require.NoError(t, err)
	assert.Equal(t, int64(99), result.PaymentID)

	_, err = repo.Authorize(context.Background(), 2, 12.50, "CAD")
	assert.ErrorIs(t, err, entity.ErrUnexpectedResponse)

	// authorize is never retried, even with a retrying config
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPaymentRepository_Capture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req captureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.PaymentID {
		case 99:
			writeJSON(w, http.StatusOK, entity.PaymentResult{PaymentID: 99, Status: entity.PaymentCaptured})
		case 98:
			http.Error(w, `{"detail":"Payment is not AUTHORIZED"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"detail":"Payment not found"}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	repo := NewPaymentRepository(clientConfig(srv.URL), logger.NewNopLogger())

	result, err := repo.Capture(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCaptured, result.Status)

	_, err = repo.Capture(context.Background(), 98)
	assert.ErrorIs(t, err, entity.ErrStateConflict)
	assert.Contains(t, err.Error(), "not AUTHORIZED")

	_, err = repo.Capture(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
