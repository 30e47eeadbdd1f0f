package fitness

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const stravaDefaultBaseURL = "https://www.strava.com"

// Strava fetches athlete activities from the Strava v3 API
type Strava struct {
	BaseURL string       // Override for tests, defaults to the public API
	Client  *http.Client // HTTP client used for API calls
}

// Name returns the provider name
func (s *Strava) Name() string { return ProviderStrava }

// stravaActivity mirrors the fields we read from /athlete/activities
type stravaActivity struct {
	ID         int64   `json:"id"`          // Activity ID
	SportType  string  `json:"sport_type"`  // e.g. "Run", "Ride"
	Distance   float64 `json:"distance"`    // Meters
	MovingTime int     `json:"moving_time"` // Seconds
	StartDate  string  `json:"start_date"`  // RFC3339 UTC
}

// FetchActivities pulls activities started after since
func (s *Strava) FetchActivities(ctx context.Context, accessToken string, since time.Time) ([]Activity, error) {
	base := s.BaseURL
	if base == "" {
		base = stravaDefaultBaseURL
	}
	url := fmt.Sprintf("%s/api/v3/athlete/activities?after=%d&per_page=100", base, since.Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken) // Bearer auth per Strava docs

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrReconnectRequired // Token expired or revoked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("strava: unexpected status %d", resp.StatusCode)
	}

	var raw []stravaActivity
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("strava: decode response: %w", err)
	}

	activities := make([]Activity, 0, len(raw))
	for _, a := range raw {
		started, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil {
			continue // Skip activities with unparseable timestamps
		}
		minutes := int(math.Round(float64(a.MovingTime) / 60.0)) // Seconds to whole minutes
		if minutes < 1 {
			minutes = 1 // Every real activity counts for at least a minute
		}
		activities = append(activities, Activity{
			ExternalID:   strconv.FormatInt(a.ID, 10),
			ActivityType: strings.ToLower(a.SportType),
			DurationMin:  minutes,
			Distance:     a.Distance / 1000.0, // Meters to kilometers
			StartedAt:    started,
		})
	}
	return activities, nil
}
