// Package difficulty maps chart difficulties to the keys their speed
// triggers are stored under.
package difficulty

import (
	"fmt"
	"strings"

	"github.com/starford/srtbspeeds/internal/apperr"
)

// Difficulty is a chart difficulty tier.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Normal
	Hard
	Expert
	XD
	RemiXD
	// Legacy is the single key used before triggers were stored per difficulty.
	Legacy
)

// All lists every difficulty in menu order.
var All = []Difficulty{Easy, Normal, Hard, Expert, XD, RemiXD, Legacy}

// KeyPrefix is shared by every speed-trigger key.
const KeyPrefix = "SpeedHelper_SpeedTriggers"

var keys = map[Difficulty]string{
	Easy:   KeyPrefix + "_EASY",
	Normal: KeyPrefix + "_NORMAL",
	Hard:   KeyPrefix + "_HARD",
	Expert: KeyPrefix + "_EXPERT",
	XD:     KeyPrefix + "_XD",
	RemiXD: KeyPrefix + "_REMIXD",
	Legacy: KeyPrefix,
}

var names = map[Difficulty]string{
	Easy:   "easy",
	Normal: "normal",
	Hard:   "hard",
	Expert: "expert",
	XD:     "xd",
	RemiXD: "remixd",
	Legacy: "legacy",
}

// Key returns the chart key for d, or "" for an unknown value.
func (d Difficulty) Key() string {
	return keys[d]
}

// String returns the lowercase name of d.
func (d Difficulty) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// Label is the human-readable name shown in menus and tables.
func (d Difficulty) Label() string {
	switch d {
	case XD:
		return "XD"
	case RemiXD:
		return "RemiXD"
	case Legacy:
		return "All (legacy)"
	default:
		n := d.String()
		return strings.ToUpper(n[:1]) + n[1:]
	}
}

// Parse accepts a difficulty name (case-insensitive), "all" for Legacy, or
// the menu numbers 1 through 7.
func Parse(s string) (Difficulty, error) {
	v := strings.TrimSpace(s)
	if d, ok := FromName(v); ok {
		return d, nil
	}
	for _, d := range All {
		if v == fmt.Sprint(int(d)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperr.ErrInvalidDifficulty, s)
}

// FromName looks up a difficulty by name only, ignoring case.
func FromName(name string) (Difficulty, bool) {
	v := strings.ToLower(name)
	if v == "all" {
		return Legacy, true
	}
	for d, n := range names {
		if v == n {
			return d, true
		}
	}
	return 0, false
}

// FromKey returns the difficulty stored under key.
func FromKey(key string) (Difficulty, bool) {
	for d, k := range keys {
		if k == key {
			return d, true
		}
	}
	return 0, false
}

// IsSpeedKey reports whether key holds speed triggers.
func IsSpeedKey(key string) bool {
	_, ok := FromKey(key)
	return ok
}
