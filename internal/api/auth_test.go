package api

import "testing"

func TestIsValidUsername(t *testing.T) {
	cases := []struct {
		username string
		want     bool
	}{
		{"runner", true},
		{"Runner_42", true},
		{"abc", true},
		{"ab", false},                      // too short
		{"1runner", false},                 // must start with a letter
		{"_runner", false},                 // must start with a letter
		{"runner!", false},                 // no punctuation
		{"thisusernameiswaytoolong", false}, // over 20 chars
		{"", false},
	}
	for _, tc := range cases {
		if got := isValidUsername(tc.username); got != tc.want {
			t.Errorf("isValidUsername(%q) = %v, want %v", tc.username, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.org", true},
		{"user@example", false}, // no TLD
		{"userexample.com", false},
		{"user @example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isValidEmail(tc.email); got != tc.want {
			t.Errorf("isValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestIsValidPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"passw0rd", true},
		{"A1bcdefg", true},
		{"short1", false},    // under 8 chars
		{"password", false},  // no digit
		{"12345678", false},  // no letter
		{"", false},
	}
	for _, tc := range cases {
		if got := isValidPassword(tc.password); got != tc.want {
			t.Errorf("isValidPassword(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
	// bcrypt caps input at 72 bytes
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	long[0] = '1'
	if isValidPassword(string(long)) {
		t.Error("expected 73-byte password to be rejected")
	}
}
