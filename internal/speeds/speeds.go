// Package speeds converts between the line-oriented .speeds text format and
// trigger lists.
//
// Each non-blank line that does not start with '#' holds
//
//	<time> <speedMultiplier> [interpolate]
//
// separated by whitespace. The interpolation flag defaults to false.
package speeds

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/starford/srtbspeeds/internal/apperr"
)

// Trigger changes the track speed at Time.
type Trigger struct {
	Time                     float32 `json:"Time"`
	SpeedMultiplier          float32 `json:"SpeedMultiplier"`
	InterpolateToNextTrigger bool    `json:"InterpolateToNextTrigger"`
}

// Decode parses speeds text. It stops at the first malformed line and
// returns a *apperr.LineError numbered by its 0-based raw line index.
func Decode(text string) ([]Trigger, error) {
	var out []Trigger
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		t, err := decodeLine(fields)
		if err != nil {
			return nil, &apperr.LineError{Line: n, Reason: err.Error()}
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeLine(fields []string) (Trigger, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return Trigger{}, fmt.Errorf("expected 2 or 3 values, found %d", len(fields))
	}
	time, ok := parseNumber(fields[0])
	if !ok {
		return Trigger{}, fmt.Errorf("time value is not a valid number")
	}
	speed, ok := parseNumber(fields[1])
	if !ok {
		return Trigger{}, fmt.Errorf("speed multiplier is not a valid number")
	}
	interpolate := false
	if len(fields) == 3 {
		switch fields[2] {
		case "true":
			interpolate = true
		case "false":
		default:
			return Trigger{}, fmt.Errorf("interpolation is not a valid boolean")
		}
	}
	return Trigger{
		Time:                     time,
		SpeedMultiplier:          speed,
		InterpolateToNextTrigger: interpolate,
	}, nil
}

// parseNumber accepts finite decimal float32 values. Hex floats, infinities,
// NaN and values out of float32 range are rejected.
func parseNumber(s string) (float32, bool) {
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return float32(f), true
}

// Encode renders triggers one per line, each line newline-terminated.
func Encode(triggers []Trigger) string {
	var b strings.Builder
	for _, t := range triggers {
		b.WriteString(formatFloat(t.Time))
		b.WriteByte(' ')
		b.WriteString(formatFloat(t.SpeedMultiplier))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatBool(t.InterpolateToNextTrigger))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatFloat returns the shortest decimal form that parses back to f.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
