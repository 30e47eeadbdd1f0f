package fitness

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Provider names accepted by the API
const (
	ProviderStrava = "strava"
	ProviderFitbit = "fitbit"
)

// ErrReconnectRequired is returned when a provider rejects the stored
// access token; the user must reconnect the provider.
var ErrReconnectRequired = errors.New("provider token rejected, reconnect required")

// ErrUnknownProvider is returned for provider names this service does not support
var ErrUnknownProvider = errors.New("unknown fitness provider")

// Activity is a provider-neutral view of one synced activity
type Activity struct {
	ExternalID   string    // Provider activity ID, unique per provider
	ActivityType string    // Normalized lowercase activity type
	DurationMin  int       // Duration in minutes
	Distance     float64   // Distance in kilometers
	StartedAt    time.Time // When the activity started
}

// Provider fetches a user's activities from a fitness platform
type Provider interface {
	Name() string
	// FetchActivities returns activities started after since, newest last.
	FetchActivities(ctx context.Context, accessToken string, since time.Time) ([]Activity, error)
}

// New returns the Provider for a name, or ErrUnknownProvider
func New(name string, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	switch name {
	case ProviderStrava:
		return &Strava{Client: client}, nil
	case ProviderFitbit:
		return &Fitbit{Client: client}, nil
	}
	return nil, ErrUnknownProvider
}
