package datalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRecorderWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	step := 0
	rec.AddColumn("t", func() float64 { return float64(step) })
	rec.AddColumn("x", func() float64 { return float64(step * 2) })

	for step = 0; step < 3; step++ {
		if err := rec.Record(step); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "t,x" {
		t.Fatalf("expected header in declaration order, got %q", lines[0])
	}
	if lines[1] != "0,0" || lines[3] != "2,4" {
		t.Fatalf("unexpected rows: %v", lines[1:])
	}
}

func TestRecorderTimingRepeat(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	value := 0.0
	rec.AddColumn("v", func() float64 { return value })
	rec.SetTimingRepeat(10)

	for step := 0; step <= 30; step++ {
		value = float64(step)
		if err := rec.Record(step); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header plus rows at steps 0, 10, 20, 30, got %d lines", len(lines))
	}
	if lines[2] != "10" || lines[4] != "30" {
		t.Fatalf("unexpected sampled rows: %v", lines[1:])
	}
}

func TestRecorderRepeatBelowOneRecordsEveryStep(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.AddColumn("v", func() float64 { return 1 })
	rec.SetTimingRepeat(0)

	for step := 0; step < 5; step++ {
		if err := rec.Record(step); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d", len(lines))
	}
}

func TestRecorderNoColumnsWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	if err := rec.Record(0); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output without columns, got %q", buf.String())
	}
}

func TestRecorderIgnoresLateColumns(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.AddColumn("a", func() float64 { return 1 })
	if err := rec.Record(0); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	rec.AddColumn("b", func() float64 { return 2 })
	if err := rec.Record(1); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "a" {
		t.Fatalf("late columns must not change the header, got %q", lines[0])
	}
	if lines[2] != "1" {
		t.Fatalf("late columns must not widen rows, got %q", lines[2])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecorderFlushPropagatesWriteErrors(t *testing.T) {
	rec := NewRecorder(failingWriter{})
	rec.AddColumn("v", func() float64 { return 1 })
	if err := rec.Record(0); err != nil {
		t.Fatalf("buffered record should not fail: %v", err)
	}
	if err := rec.Flush(); err == nil {
		t.Fatal("flush must surface the writer error")
	}
}
