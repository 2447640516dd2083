package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPageTracker(t *testing.T) {
	var buf bytes.Buffer
	log := captureLogger(t, &buf)

	tracker := NewPageTracker("test fetch", log)
	tracker.Page(20)
	tracker.Page(20)
	tracker.Page(5)
	tracker.Complete()

	output := buf.String()
	if !strings.Contains(output, `"pages":3`) {
		t.Errorf("Expected 3 pages in completion log, got %s", output)
	}
	if !strings.Contains(output, `"records":45`) {
		t.Errorf("Expected 45 records in completion log, got %s", output)
	}
	if !strings.Contains(output, "Fetch completed") {
		t.Errorf("Expected completion message, got %s", output)
	}
}

func TestPageTracker_CompleteWithError(t *testing.T) {
	var buf bytes.Buffer
	log := captureLogger(t, &buf)

	tracker := NewPageTracker("test fetch", log)
	tracker.Page(20)
	tracker.CompleteWithError(errors.New("page 1 failed"))

	output := buf.String()
	if !strings.Contains(output, "Fetch failed") {
		t.Errorf("Expected failure message, got %s", output)
	}
	if !strings.Contains(output, "page 1 failed") {
		t.Errorf("Expected error in log, got %s", output)
	}
}

func TestPageTracker_NilLoggerUsesGlobal(t *testing.T) {
	tracker := NewPageTracker("test fetch", nil)
	if tracker.logger == nil {
		t.Fatal("Expected a logger to be set")
	}
}

func TestOperationLogger(t *testing.T) {
	var buf bytes.Buffer
	log := captureLogger(t, &buf)

	ol := NewOperationLogger("reconcile", log)
	ol.WithField("campaigns", 10).Step("matching")
	ol.Progress("aggregating", 5, 10)
	ol.Success("done")

	output := buf.String()
	if !strings.Contains(output, `"operation":"reconcile"`) {
		t.Errorf("Expected operation field, got %s", output)
	}
	if !strings.Contains(output, `"step":"matching"`) {
		t.Errorf("Expected step field, got %s", output)
	}
	if !strings.Contains(output, `"percentage":"50.0%"`) {
		t.Errorf("Expected percentage field, got %s", output)
	}
	if !strings.Contains(output, `"status":"success"`) {
		t.Errorf("Expected success status, got %s", output)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	log := captureLogger(t, &buf)

	err := TimedOperation("fetch", log, func() error { return nil })
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Operation completed successfully") {
		t.Errorf("Expected success log, got %s", buf.String())
	}

	buf.Reset()
	wantErr := errors.New("boom")
	err = TimedOperation("fetch", log, func() error { return wantErr })
	if err != wantErr {
		t.Errorf("Expected the function error back, got %v", err)
	}
	if !strings.Contains(buf.String(), "Operation failed") {
		t.Errorf("Expected failure log, got %s", buf.String())
	}
}
