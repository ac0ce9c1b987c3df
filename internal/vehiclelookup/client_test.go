package vehiclelookup_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motmatch/mot-marketplace/internal/cache"
	"github.com/motmatch/mot-marketplace/internal/config"
	"github.com/motmatch/mot-marketplace/internal/vehiclelookup"
)

func offlineCache() *cache.Cache {
	return cache.New(&config.Config{RedisAddr: "127.0.0.1:1"})
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/vehicle-enquiry/v1/vehicles", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req struct {
			RegistrationNumber string `json:"registrationNumber"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.RegistrationNumber != "AB12CDE" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"registrationNumber": "AB12CDE",
			"make": "FORD",
			"colour": "BLUE",
			"fuelType": "PETROL",
			"yearOfManufacture": 2019,
			"motStatus": "Valid",
			"motExpiryDate": "2026-11-30"
		}`))
	}))
	defer srv.Close()

	client := vehiclelookup.NewClient(&config.Config{
		VESBaseURL: srv.URL,
		VESAPIKey:  "test-key",
	}, offlineCache())

	t.Run("returns vehicle data", func(t *testing.T) {
		result, err := client.Lookup(context.Background(), "AB12CDE")

		require.NoError(t, err)
		assert.Equal(t, "FORD", result.Make)
		assert.Equal(t, "BLUE", result.Colour)
		assert.Equal(t, 2019, result.YearOfManufacture)
		assert.Equal(t, "Valid", result.MOTStatus)
	})

	t.Run("unknown registration errors", func(t *testing.T) {
		_, err := client.Lookup(context.Background(), "ZZ99ZZZ")

		assert.Error(t, err)
	})
}

func TestParseMOTExpiry(t *testing.T) {
	t.Run("parses the expiry date", func(t *testing.T) {
		expiry := vehiclelookup.ParseMOTExpiry(&vehiclelookup.Result{MOTExpiryDate: "2026-11-30"})

		require.NotNil(t, expiry)
		assert.Equal(t, time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), *expiry)
	})

	t.Run("nil when absent", func(t *testing.T) {
		assert.Nil(t, vehiclelookup.ParseMOTExpiry(&vehiclelookup.Result{}))
	})

	t.Run("nil when malformed", func(t *testing.T) {
		assert.Nil(t, vehiclelookup.ParseMOTExpiry(&vehiclelookup.Result{MOTExpiryDate: "30/11/2026"}))
	})
}
