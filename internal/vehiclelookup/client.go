package vehiclelookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/motmatch/mot-marketplace/internal/cache"
	"github.com/motmatch/mot-marketplace/internal/config"
)

// Result is the subset of the government vehicle-enquiry response we keep.
type Result struct {
	Registration      string `json:"registrationNumber"`
	Make              string `json:"make"`
	Colour            string `json:"colour"`
	FuelType          string `json:"fuelType"`
	YearOfManufacture int    `json:"yearOfManufacture"`
	MOTStatus         string `json:"motStatus"`
	MOTExpiryDate     string `json:"motExpiryDate"` // YYYY-MM-DD
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.Cache
}

const cacheTTL = 24 * time.Hour

func NewClient(cfg *config.Config, c *cache.Cache) *Client {
	return &Client{
		baseURL: cfg.VESBaseURL,
		apiKey:  cfg.VESAPIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   c,
	}
}

// Lookup fetches vehicle data for a normalized registration mark. Results are
// cached for a day; MOT data moves slowly and the API is rate limited.
func (c *Client) Lookup(ctx context.Context, registration string) (*Result, error) {
	key := "ves:" + registration

	if cached, ok := c.cache.Get(ctx, key); ok {
		var r Result
		if err := json.Unmarshal([]byte(cached), &r); err == nil {
			return &r, nil
		}
	}

	body, err := json.Marshal(map[string]string{
		"registrationNumber": registration,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/vehicle-enquiry/v1/vehicles",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("vehicle %s not found", registration)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vehicle enquiry returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	if b, err := json.Marshal(result); err == nil {
		c.cache.Set(ctx, key, string(b), cacheTTL)
	}

	return &result, nil
}

// ParseMOTExpiry converts the API's date string; nil when absent or malformed.
func ParseMOTExpiry(r *Result) *time.Time {
	if r.MOTExpiryDate == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", r.MOTExpiryDate)
	if err != nil {
		return nil
	}
	return &t
}
