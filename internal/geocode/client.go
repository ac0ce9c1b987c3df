package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/motmatch/mot-marketplace/internal/cache"
	"github.com/motmatch/mot-marketplace/internal/config"
)

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
}

const cacheTTL = 30 * 24 * time.Hour

func NewClient(cfg *config.Config, c *cache.Cache) *Client {
	return &Client{
		baseURL: cfg.GeocoderBaseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   c,
	}
}

// Resolve turns a UK postcode into coordinates. Postcodes are immutable for
// practical purposes, so cache hits dominate.
func (c *Client) Resolve(ctx context.Context, postcode string) (*Point, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	if normalized == "" {
		return nil, fmt.Errorf("empty postcode")
	}

	key := "geo:" + normalized
	if cached, ok := c.cache.Get(ctx, key); ok {
		var p Point
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/postcodes/"+url.PathEscape(normalized),
		nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned %d for %s", resp.StatusCode, normalized)
	}

	var payload struct {
		Result Point `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	if b, err := json.Marshal(payload.Result); err == nil {
		c.cache.Set(ctx, key, string(b), cacheTTL)
	}

	return &payload.Result, nil
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
