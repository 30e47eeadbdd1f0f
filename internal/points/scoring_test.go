package points

import "testing"

func TestEffortMultiplierNoBaseline(t *testing.T) {
	// Below the sample threshold the multiplier is neutral
	if got := EffortMultiplier(90, 30, BaselineMinSamples-1); got != 1.0 {
		t.Errorf("EffortMultiplier with too few samples = %v, want 1.0", got)
	}
	if got := EffortMultiplier(90, 0, 10); got != 1.0 {
		t.Errorf("EffortMultiplier with zero average = %v, want 1.0", got)
	}
}

func TestEffortMultiplierScaling(t *testing.T) {
	cases := []struct {
		name        string
		durationMin int
		avg         float64
		want        float64
	}{
		{"at baseline", 30, 30, 1.0},
		{"above baseline", 45, 30, 1.5},
		{"below baseline", 15, 30, 0.5},
		{"clamped low", 5, 60, MinMultiplier},
		{"clamped high", 180, 30, MaxMultiplier},
	}
	for _, tc := range cases {
		if got := EffortMultiplier(tc.durationMin, tc.avg, BaselineMinSamples); got != tc.want {
			t.Errorf("%s: EffortMultiplier(%d, %v) = %v, want %v", tc.name, tc.durationMin, tc.avg, got, tc.want)
		}
	}
}

func TestWorkoutAward(t *testing.T) {
	if got := WorkoutAward(50, 1.0); got != 50 {
		t.Errorf("WorkoutAward(50, 1.0) = %d, want 50", got)
	}
	if got := WorkoutAward(50, 1.5); got != 75 {
		t.Errorf("WorkoutAward(50, 1.5) = %d, want 75", got)
	}
	// Rounds to nearest rather than truncating
	if got := WorkoutAward(50, 0.99); got != 50 {
		t.Errorf("WorkoutAward(50, 0.99) = %d, want 50", got)
	}
}

func TestCapDailyAward(t *testing.T) {
	cases := []struct {
		name    string
		amount  int64
		earned  int64
		cap     int64
		want    int64
	}{
		{"under cap", 100, 0, 500, 100},
		{"exactly fills cap", 100, 400, 500, 100},
		{"partial clamp", 100, 450, 500, 50},
		{"cap already reached", 100, 500, 500, 0},
		{"cap exceeded", 100, 600, 500, 0},
		{"zero amount", 0, 0, 500, 0},
	}
	for _, tc := range cases {
		if got := CapDailyAward(tc.amount, tc.earned, tc.cap); got != tc.want {
			t.Errorf("%s: CapDailyAward(%d, %d, %d) = %d, want %d", tc.name, tc.amount, tc.earned, tc.cap, got, tc.want)
		}
	}
}

func TestVoterWeight(t *testing.T) {
	cases := []struct {
		lifetime int64
		want     float64
	}{
		{0, 1.0},
		{500, 1.5},
		{1000, 2.0},
		{2000, 3.0},
		{50000, MaxVoterWeight}, // capped
	}
	for _, tc := range cases {
		if got := VoterWeight(tc.lifetime); got != tc.want {
			t.Errorf("VoterWeight(%d) = %v, want %v", tc.lifetime, got, tc.want)
		}
	}
}
