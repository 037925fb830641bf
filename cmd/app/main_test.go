package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/models"
	"github.com/starford/srtbspeeds/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestIntegrateExtractRemoveFiles(t *testing.T) {
	dir := t.TempDir()
	chart := writeFile(t, dir, "song.srtb", testutil.Chart)
	speedsFile := writeFile(t, dir, "song.speeds", testutil.Speeds)

	n, err := integrateFile(chart, speedsFile, chart, difficulty.Hard)
	if err != nil {
		t.Fatalf("integrateFile: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	var buf bytes.Buffer
	if err := extractTo(&buf, chart, difficulty.Hard); err != nil {
		t.Fatalf("extractTo: %v", err)
	}
	if buf.String() != testutil.SpeedsNormalized {
		t.Errorf("extracted = %q, want %q", buf.String(), testutil.SpeedsNormalized)
	}

	out := filepath.Join(dir, "out.speeds")
	if err := extractFile(chart, out, difficulty.Hard); err != nil {
		t.Fatalf("extractFile: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != testutil.SpeedsNormalized {
		t.Errorf("extract file = %q", data)
	}

	stripped := filepath.Join(dir, "stripped.srtb")
	if err := removeFile(chart, stripped, difficulty.Hard); err != nil {
		t.Fatalf("removeFile: %v", err)
	}
	data, _ = os.ReadFile(stripped)
	if string(data) != testutil.Chart {
		t.Errorf("stripped chart = %s", data)
	}
}

func TestIntegrateFile_BadSpeedsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	chart := writeFile(t, dir, "song.srtb", testutil.Chart)
	speedsFile := writeFile(t, dir, "bad.speeds", "0 1\n\n2\n")
	out := filepath.Join(dir, "out.srtb")

	_, err := integrateFile(chart, speedsFile, out, difficulty.Easy)
	var le *apperr.LineError
	if !errors.As(err, &le) || le.Line != 2 {
		t.Fatalf("err = %v, want line error on line 2", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output was written")
	}
}

func TestRemoveFile_NotFound(t *testing.T) {
	dir := t.TempDir()
	chart := writeFile(t, dir, "song.srtb", testutil.Chart)
	out := filepath.Join(dir, "out.srtb")

	if err := removeFile(chart, out, difficulty.XD); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output was written")
	}
}

func TestExtract_MissingChart(t *testing.T) {
	var buf bytes.Buffer
	err := extractTo(&buf, filepath.Join(t.TempDir(), "none.srtb"), difficulty.Easy)
	var ioErr *apperr.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("err = %v, want *apperr.IOError", err)
	}
}

func TestRenderChartTable(t *testing.T) {
	out := renderChartTable([]models.Chart{
		{Path: "a.srtb"},
		{Path: "b.srtb", Speeds: []models.ChartSpeeds{
			{Key: "SpeedHelper_SpeedTriggers_XD", Difficulty: "xd", TriggerCount: 4, FirstTime: 0, LastTime: 12.5},
			{Key: "SpeedHelper_SpeedTriggers", Difficulty: "legacy", TriggerCount: -1},
		}},
	})
	for _, want := range []string{"Chart", "a.srtb", "b.srtb", "xd", "12.50", "invalid"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "b.srtb") != 1 {
		t.Errorf("chart path repeated:\n%s", out)
	}
}
