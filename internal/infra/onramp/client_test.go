package onramp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateSession(t *testing.T) {
	t.Run("posts the session and returns the hosted url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/sessions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req SessionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "FL-TEST0001", req.OrderNumber)
			assert.Equal(t, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", req.Recipient)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"url":"https://ramp.example/s/abc123"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key", 5*time.Second)

		url, err := client.CreateSession(context.Background(), SessionRequest{
			OrderID:     1,
			OrderNumber: "FL-TEST0001",
			Amount:      decimal.RequireFromString("0.5"),
			Currency:    "SOL",
			Method:      "card",
			Recipient:   "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://ramp.example/s/abc123", url)
	})

	t.Run("provider error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "bad-key", 5*time.Second)

		_, err := client.CreateSession(context.Background(), SessionRequest{OrderID: 1})
		assert.Error(t, err)
	})

	t.Run("missing session url in response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key", 5*time.Second)

		_, err := client.CreateSession(context.Background(), SessionRequest{OrderID: 1})
		assert.Error(t, err)
	})
}
