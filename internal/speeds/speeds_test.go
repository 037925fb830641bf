package speeds

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/srtbspeeds/internal/apperr"
)

var sample = []Trigger{
	{Time: 0, SpeedMultiplier: 1},
	{Time: 1.5, SpeedMultiplier: 2},
	{Time: 2, SpeedMultiplier: 1.5, InterpolateToNextTrigger: true},
}

func TestDecode_DefaultsInterpolationToFalse(t *testing.T) {
	got, err := Decode("0 1\n1.5 2 false\n2 1.5 true\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, sample) {
		t.Errorf("triggers = %+v, want %+v", got, sample)
	}
}

func TestEncode(t *testing.T) {
	got := Encode(sample)
	want := "0 1 false\n1.5 2 false\n2 1.5 true\n"
	if got != want {
		t.Errorf("encoded = %q, want %q", got, want)
	}
}

func TestEncode_Empty(t *testing.T) {
	if got := Encode(nil); got != "" {
		t.Errorf("encoded = %q, want empty", got)
	}
}

func TestRoundTrip(t *testing.T) {
	lists := [][]Trigger{
		sample,
		{{Time: 0.1, SpeedMultiplier: 0.3}},
		{{Time: 123456.79, SpeedMultiplier: -2.25, InterpolateToNextTrigger: true}},
		{{Time: 1e-7, SpeedMultiplier: 3.4028235e38}},
	}
	for _, l := range lists {
		got, err := Decode(Encode(l))
		if err != nil {
			t.Fatalf("decode %q: %v", Encode(l), err)
		}
		if !reflect.DeepEqual(got, l) {
			t.Errorf("round trip = %+v, want %+v", got, l)
		}
	}
}

func TestDecode_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# intro\n\n   \n  # indented comment\r\n4\t0.5   true\r\n"
	got, err := Decode(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Trigger{{Time: 4, SpeedMultiplier: 0.5, InterpolateToNextTrigger: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("triggers = %+v, want %+v", got, want)
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	got, err := Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{"one field", "1\n", 0, "expected 2 or 3 values, found 1"},
		{"four fields", "0 1\n1 2 true extra\n", 1, "expected 2 or 3 values, found 4"},
		{"bad time", "x 1\n", 0, "time value is not a valid number"},
		{"bad speed", "1 fast\n", 0, "speed multiplier is not a valid number"},
		{"bad bool", "1 2 yes\n", 0, "interpolation is not a valid boolean"},
		{"bool is case sensitive", "1 2 True\n", 0, "interpolation is not a valid boolean"},
		{"infinite time", "inf 1\n", 0, "time value is not a valid number"},
		{"signed infinity", "+Infinity 1\n", 0, "time value is not a valid number"},
		{"nan speed", "0 nan\n", 0, "speed multiplier is not a valid number"},
		{"out of range", "0 1e39\n", 0, "speed multiplier is not a valid number"},
		{"hex float", "0x1p-2 1\n", 0, "time value is not a valid number"},
		{"skipped lines count", "# header\n\n0 1\n1 2 3 4 5\n", 3, "expected 2 or 3 values, found 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.input)
			if got != nil {
				t.Errorf("expected no partial result, got %+v", got)
			}
			var le *apperr.LineError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *apperr.LineError", err)
			}
			if le.Line != tc.line {
				t.Errorf("line = %d, want %d", le.Line, tc.line)
			}
			if le.Reason != tc.reason {
				t.Errorf("reason = %q, want %q", le.Reason, tc.reason)
			}
		})
	}
}

func TestDecode_StopsAtFirstError(t *testing.T) {
	_, err := Decode("1\nbad bad\n")
	var le *apperr.LineError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *apperr.LineError", err)
	}
	if le.Line != 0 {
		t.Errorf("line = %d, want first bad line 0", le.Line)
	}
	if err.Error() != "line 0: expected 2 or 3 values, found 1" {
		t.Errorf("message = %q", err.Error())
	}
}
