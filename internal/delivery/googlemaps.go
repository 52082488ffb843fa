package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const directionsEndpoint = "https://maps.googleapis.com/maps/api/directions/json"

// GoogleMapsProvider measures driving distance via the Directions API.
type GoogleMapsProvider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewGoogleMapsProvider(apiKey string) *GoogleMapsProvider {
	return &GoogleMapsProvider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    directionsEndpoint,
	}
}

// Measure requests a driving route and converts the first leg to km and
// minutes. Every failure path returns a *ProviderError so callers can tell
// "no route" apart from plumbing errors by Code.
func (p *GoogleMapsProvider) Measure(ctx context.Context, origin, destination string) (Measurement, error) {
	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", "driving")
	params.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Measurement{}, &ProviderError{Code: "BAD_REQUEST", Message: err.Error()}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Measurement{}, &ProviderError{Code: "UNAVAILABLE", Message: err.Error()}
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
		Routes []struct {
			Legs []struct {
				Distance struct {
					Value int `json:"value"` // meters
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"` // seconds
				} `json:"duration"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Measurement{}, &ProviderError{Code: "BAD_RESPONSE", Message: err.Error()}
	}

	if out.Status != "OK" || len(out.Routes) == 0 || len(out.Routes[0].Legs) == 0 {
		status := out.Status
		if status == "" {
			status = "ZERO_RESULTS"
		}
		return Measurement{}, &ProviderError{Code: status, Message: "no route between addresses"}
	}

	leg := out.Routes[0].Legs[0]
	return Measurement{
		DistanceKm:      float64(leg.Distance.Value) / 1000.0,
		DurationMinutes: float64(leg.Duration.Value) / 60.0,
	}, nil
}
