package fitness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFitbitFetchActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1/user/-/activities/list.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.URL.Query().Get("afterDate") == "" {
			t.Error("expected afterDate query param")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"activities": [
			{"logId": 9001, "activityName": "Run", "duration": 2700000, "distance": 7.5, "startTime": "2026-08-20T06:30:00.000+02:00"},
			{"logId": 9002, "activityName": "Walk", "duration": 600000, "distance": 0.8, "startTime": "2026-08-01T06:30:00.000+02:00"}
		]}`))
	}))
	defer srv.Close()

	since := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	p := &Fitbit{BaseURL: srv.URL, Client: srv.Client()}
	acts, err := p.FetchActivities(context.Background(), "tok", since)
	if err != nil {
		t.Fatalf("FetchActivities: %v", err)
	}
	// The activity before since is filtered despite afterDate's day granularity
	if len(acts) != 1 {
		t.Fatalf("got %d activities, want 1", len(acts))
	}
	run := acts[0]
	if run.ExternalID != "9001" {
		t.Errorf("ExternalID = %q, want 9001", run.ExternalID)
	}
	if run.ActivityType != "run" {
		t.Errorf("ActivityType = %q, want run", run.ActivityType)
	}
	if run.DurationMin != 45 {
		t.Errorf("DurationMin = %d, want 45", run.DurationMin)
	}
	if run.Distance != 7.5 {
		t.Errorf("Distance = %v, want 7.5", run.Distance)
	}
}

func TestFitbitUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := &Fitbit{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := p.FetchActivities(context.Background(), "stale", time.Now()); err != ErrReconnectRequired {
		t.Errorf("got %v, want ErrReconnectRequired", err)
	}
}

func TestProviderFactory(t *testing.T) {
	if p, err := New(ProviderStrava, nil); err != nil || p.Name() != ProviderStrava {
		t.Errorf("New(strava) = %v, %v", p, err)
	}
	if p, err := New(ProviderFitbit, nil); err != nil || p.Name() != ProviderFitbit {
		t.Errorf("New(fitbit) = %v, %v", p, err)
	}
	if _, err := New("garmin", nil); err != ErrUnknownProvider {
		t.Errorf("New(garmin) err = %v, want ErrUnknownProvider", err)
	}
}
