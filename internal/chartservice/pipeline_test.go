package chartservice

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/speeds"
	"github.com/starford/srtbspeeds/internal/srtb"
	"github.com/starford/srtbspeeds/internal/testutil"
)

const easyKey = "SpeedHelper_SpeedTriggers_EASY"

func TestIntegrateThenExtract(t *testing.T) {
	chart, n, err := IntegrateSpeeds([]byte(testutil.Chart), testutil.Speeds, easyKey)
	if err != nil {
		t.Fatalf("IntegrateSpeeds: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	doc, err := srtb.Parse(chart)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	keys := doc.Keys()
	if len(keys) != 2 || keys[1] != easyKey {
		t.Fatalf("keys = %v, want new entry appended", keys)
	}

	text, triggers, err := ExtractSpeeds(chart, easyKey)
	if err != nil {
		t.Fatalf("ExtractSpeeds: %v", err)
	}
	if text != testutil.SpeedsNormalized {
		t.Errorf("text = %q, want %q", text, testutil.SpeedsNormalized)
	}
	want, _ := speeds.Decode(testutil.Speeds)
	if !reflect.DeepEqual(triggers, want) {
		t.Errorf("triggers = %+v, want %+v", triggers, want)
	}
}

func TestIntegrate_ReplacesExisting(t *testing.T) {
	chart, _, err := IntegrateSpeeds([]byte(testutil.Chart), "0 1\n", easyKey)
	if err != nil {
		t.Fatal(err)
	}
	chart, _, err = IntegrateSpeeds(chart, "5 3 true\n", easyKey)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := srtb.Parse(chart)
	if len(doc.Keys()) != 2 {
		t.Errorf("keys = %v, want replacement not duplicate", doc.Keys())
	}
	text, _, _ := ExtractSpeeds(chart, easyKey)
	if text != "5 3 true\n" {
		t.Errorf("text = %q", text)
	}
}

func TestIntegrate_BadSpeedsLeavesNoOutput(t *testing.T) {
	out, _, err := IntegrateSpeeds([]byte(testutil.Chart), "0 1\n1 x\n", easyKey)
	var le *apperr.LineError
	if !errors.As(err, &le) || le.Line != 1 {
		t.Fatalf("err = %v, want line error on line 1", err)
	}
	if out != nil {
		t.Errorf("out = %q, want nil", out)
	}
}

func TestIntegrate_BadChart(t *testing.T) {
	_, _, err := IntegrateSpeeds([]byte("{"), "0 1\n", easyKey)
	var de *apperr.DocumentError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *apperr.DocumentError", err)
	}
}

func TestExtract_NotFound(t *testing.T) {
	_, _, err := ExtractSpeeds([]byte(testutil.Chart), easyKey)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExtract_BadPayload(t *testing.T) {
	doc, _ := srtb.Parse([]byte(testutil.Chart))
	doc.Integrate(easyKey, "not a payload")
	chart, _ := srtb.Marshal(doc)

	_, _, err := ExtractSpeeds(chart, easyKey)
	var de *apperr.DocumentError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *apperr.DocumentError", err)
	}
}

func TestRemove(t *testing.T) {
	chart, _, _ := IntegrateSpeeds([]byte(testutil.Chart), "0 1\n", easyKey)
	out, err := RemoveSpeeds(chart, easyKey)
	if err != nil {
		t.Fatalf("RemoveSpeeds: %v", err)
	}
	if string(out) != testutil.Chart {
		t.Errorf("chart = %s\nwant    %s", out, testutil.Chart)
	}

	if _, err := RemoveSpeeds(out, easyKey); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}
