package billingclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPublish(t *testing.T) {
	rec := models.BillingRecord{
		SessionId:    "session-1",
		TotalCost:    120,
		EnergyCost:   100,
		IdleCost:     20,
		CalculatedAt: time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	t.Run("posts the record with credentials", func(t *testing.T) {
		var got models.BillingRecord
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "session-1/2021-01-02T00:00:00Z", r.Header.Get("Idempotency-Key"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		err := New(srv.URL, "key-1").Publish(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, "session-1", got.SessionId)
		assert.EqualValues(t, 120, got.TotalCost)
		assert.EqualValues(t, 20, got.IdleCost)
	})

	t.Run("non-2xx is a status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "ledger closed", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := New(srv.URL, "").Publish(context.Background(), rec)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "ledger closed")
	})
}
