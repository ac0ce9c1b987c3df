package geocode_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motmatch/mot-marketplace/internal/cache"
	"github.com/motmatch/mot-marketplace/internal/config"
	"github.com/motmatch/mot-marketplace/internal/geocode"
)

// offlineCache points at a closed port; every lookup is a miss.
func offlineCache() *cache.Cache {
	return cache.New(&config.Config{RedisAddr: "127.0.0.1:1"})
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/postcodes/SW1A1AA":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":200,"result":{"latitude":51.501009,"longitude":-0.141588}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := geocode.NewClient(&config.Config{GeocoderBaseURL: srv.URL}, offlineCache())

	t.Run("resolves and normalizes the postcode", func(t *testing.T) {
		point, err := client.Resolve(context.Background(), "sw1a 1aa")

		require.NoError(t, err)
		assert.InDelta(t, 51.501009, point.Latitude, 1e-6)
		assert.InDelta(t, -0.141588, point.Longitude, 1e-6)
	})

	t.Run("unknown postcode errors", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "ZZ99 9ZZ")

		assert.Error(t, err)
	})

	t.Run("empty postcode errors without a request", func(t *testing.T) {
		_, err := client.Resolve(context.Background(), "  ")

		assert.Error(t, err)
	})
}

func TestDistanceKm(t *testing.T) {
	// Buckingham Palace to Trafalgar Square, roughly 1 km.
	palace := geocode.Point{Latitude: 51.501009, Longitude: -0.141588}
	trafalgar := geocode.Point{Latitude: 51.508039, Longitude: -0.128069}

	d := geocode.DistanceKm(palace, trafalgar)

	assert.InDelta(t, 1.2, d, 0.3)
	assert.InDelta(t, d, geocode.DistanceKm(trafalgar, palace), 1e-9, "distance is symmetric")
	assert.Zero(t, geocode.DistanceKm(palace, palace))
}
