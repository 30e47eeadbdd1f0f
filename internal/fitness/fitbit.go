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

const fitbitDefaultBaseURL = "https://api.fitbit.com"

// Fitbit start time layout, e.g. "2024-05-01T07:30:00.000-05:00"
const fitbitTimeLayout = "2006-01-02T15:04:05.000-07:00"

// Fitbit fetches logged activities from the Fitbit Web API
type Fitbit struct {
	BaseURL string       // Override for tests, defaults to the public API
	Client  *http.Client // HTTP client used for API calls
}

// Name returns the provider name
func (f *Fitbit) Name() string { return ProviderFitbit }

// fitbitActivity mirrors the fields we read from the activity list endpoint
type fitbitActivity struct {
	LogID        int64   `json:"logId"`        // Activity log ID
	ActivityName string  `json:"activityName"` // e.g. "Run", "Walk"
	Duration     int64   `json:"duration"`     // Milliseconds
	Distance     float64 `json:"distance"`     // Kilometers (metric units)
	StartTime    string  `json:"startTime"`    // Local time with offset
}

// fitbitListResponse is the envelope around the activity list
type fitbitListResponse struct {
	Activities []fitbitActivity `json:"activities"`
}

// FetchActivities pulls activities logged after since
func (f *Fitbit) FetchActivities(ctx context.Context, accessToken string, since time.Time) ([]Activity, error) {
	base := f.BaseURL
	if base == "" {
		base = fitbitDefaultBaseURL
	}
	url := fmt.Sprintf("%s/1/user/-/activities/list.json?afterDate=%s&sort=asc&offset=0&limit=100",
		base, since.UTC().Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken) // Bearer auth per Fitbit docs
	req.Header.Set("Accept-Language", "en_GB")             // Metric distance units

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrReconnectRequired // Token expired or revoked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fitbit: unexpected status %d", resp.StatusCode)
	}

	var raw fitbitListResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fitbit: decode response: %w", err)
	}

	activities := make([]Activity, 0, len(raw.Activities))
	for _, a := range raw.Activities {
		started, err := time.Parse(fitbitTimeLayout, a.StartTime)
		if err != nil {
			continue // Skip activities with unparseable timestamps
		}
		if !started.After(since) {
			continue // afterDate is day-granular, filter precisely here
		}
		minutes := int(math.Round(float64(a.Duration) / 60000.0)) // Milliseconds to whole minutes
		if minutes < 1 {
			minutes = 1 // Every real activity counts for at least a minute
		}
		activities = append(activities, Activity{
			ExternalID:   strconv.FormatInt(a.LogID, 10),
			ActivityType: strings.ToLower(a.ActivityName),
			DurationMin:  minutes,
			Distance:     a.Distance,
			StartedAt:    started,
		})
	}
	return activities, nil
}
