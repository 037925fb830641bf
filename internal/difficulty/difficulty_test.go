package difficulty

import (
	"errors"
	"testing"

	"github.com/starford/srtbspeeds/internal/apperr"
)

func TestKeys(t *testing.T) {
	want := map[Difficulty]string{
		Easy:   "SpeedHelper_SpeedTriggers_EASY",
		Normal: "SpeedHelper_SpeedTriggers_NORMAL",
		Hard:   "SpeedHelper_SpeedTriggers_HARD",
		Expert: "SpeedHelper_SpeedTriggers_EXPERT",
		XD:     "SpeedHelper_SpeedTriggers_XD",
		RemiXD: "SpeedHelper_SpeedTriggers_REMIXD",
		Legacy: "SpeedHelper_SpeedTriggers",
	}
	for d, k := range want {
		if got := d.Key(); got != k {
			t.Errorf("%s.Key() = %q, want %q", d, got, k)
		}
		back, ok := FromKey(k)
		if !ok || back != d {
			t.Errorf("FromKey(%q) = %v, %v", k, back, ok)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Difficulty{
		"easy":   Easy,
		"EXPERT": Expert,
		" xd ":   XD,
		"RemiXD": RemiXD,
		"all":    Legacy,
		"legacy": Legacy,
		"1":      Easy,
		"7":      Legacy,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "0", "8", "insane"} {
		_, err := Parse(in)
		if !errors.Is(err, apperr.ErrInvalidDifficulty) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidDifficulty", in, err)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Expert.Label(); got != "Expert" {
		t.Errorf("label = %q", got)
	}
	if got := Legacy.Label(); got != "All (legacy)" {
		t.Errorf("label = %q", got)
	}
}

func TestIsSpeedKey(t *testing.T) {
	if IsSpeedKey("SO_TrackInfo_TrackInfo") {
		t.Error("track info is not a speed key")
	}
	if !IsSpeedKey("SpeedHelper_SpeedTriggers") {
		t.Error("legacy key should be a speed key")
	}
}

func TestFromName_RejectsNumbers(t *testing.T) {
	if _, ok := FromName("3"); ok {
		t.Error("FromName should not accept menu numbers")
	}
	if d, ok := FromName("Hard"); !ok || d != Hard {
		t.Errorf("FromName(Hard) = %v, %v", d, ok)
	}
}
