// Package validation checks names read from level files and throttles
// spectator connection attempts.
package validation

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"unicode/utf8"
)

const (
	MaxLevelNameLen = 32
)

// ErrInvalidName is returned for names that cannot be shown in titles,
// status lines and the results store.
var ErrInvalidName = errors.New("validation: invalid name")

var validLevelName = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

// LevelName checks a level name.
func LevelName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}
	if len(name) > MaxLevelNameLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidName, len(name), MaxLevelNameLen)
	}
	if !validLevelName.MatchString(name) {
		return fmt.Errorf("%w: %q may only hold letters, digits, '.', '-' and '_'", ErrInvalidName, name)
	}
	return nil
}

// RemoteKey returns the host part of the request's remote address, so that
// every connection from one machine shares a rate limit bucket.
func RemoteKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
