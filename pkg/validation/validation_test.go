package validation

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLevelName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "courtyard"},
		{name: "punctuation", input: "alley-2_b.v1"},
		{name: "max_length", input: strings.Repeat("a", MaxLevelNameLen)},
		{name: "empty", input: "", wantErr: true},
		{name: "too_long", input: strings.Repeat("a", MaxLevelNameLen+1), wantErr: true},
		{name: "invalid_utf8", input: "yard\xff", wantErr: true},
		{name: "markup", input: "<b>yard</b>", wantErr: true},
		{name: "control", input: "yard\x1b[2J", wantErr: true},
		{name: "non_ascii", input: "höf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LevelName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("LevelName(%q) = %v, want ErrInvalidName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("LevelName(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestRemoteKey(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{name: "ipv4", remote: "10.0.0.7:51234", want: "10.0.0.7"},
		{name: "ipv6", remote: "[::1]:8080", want: "::1"},
		{name: "no_port", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.RemoteAddr = tt.remote
			if got := RemoteKey(r); got != tt.want {
				t.Errorf("RemoteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimiter_Allow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newRateLimiter(3, time.Minute, clock.now)

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("a") {
		t.Error("fourth attempt should be refused")
	}
	if !rl.Allow("b") {
		t.Error("other keys have their own bucket")
	}
	if got := rl.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newRateLimiter(2, 40*time.Second, clock.now)

	rl.Allow("a")
	rl.Allow("a")
	if rl.Allow("a") {
		t.Fatal("bucket should be empty")
	}

	// Half a window refills one of two tokens.
	clock.advance(20 * time.Second)
	if !rl.Allow("a") {
		t.Error("one token should have been refilled")
	}
	if rl.Allow("a") {
		t.Error("only one token should have been refilled")
	}

	// Refused attempts keep the partial refill.
	for i := 0; i < 3; i++ {
		clock.advance(5 * time.Second)
		if rl.Allow("a") {
			t.Fatalf("step %d: a partial token is not enough", i+1)
		}
	}
	clock.advance(5 * time.Second)
	if !rl.Allow("a") {
		t.Error("partial refills should add up to a token")
	}

	clock.advance(time.Hour)
	if !rl.Allow("a") || !rl.Allow("a") || rl.Allow("a") {
		t.Error("refill must stop at the burst size")
	}
}

func TestRateLimiter_ForgetIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newRateLimiter(1, time.Minute, clock.now)

	rl.Allow("old")
	clock.advance(2 * time.Minute)
	rl.Allow("new")
	rl.forgetIdle()

	if got := rl.Len(); got != 1 {
		t.Errorf("Len() after forgetIdle = %d, want 1", got)
	}
	if !rl.Allow("old") {
		t.Error("a forgotten key starts with a full bucket")
	}
}

func TestRateLimiter_Close(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	rl.Close()
	rl.Close()
	if !rl.Allow("a") {
		t.Error("Allow keeps working after Close")
	}
}
