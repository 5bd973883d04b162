package provider

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderReport(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSuccess(NewsAPI, 100*time.Millisecond)
	rec.RecordSuccess(NewsAPI, 300*time.Millisecond)
	rec.RecordFailure(NewsAPI, 500*time.Millisecond, errors.New("timeout"))

	report := rec.Report()
	got := report["newsApi"]
	if got.TotalCalls != 3 {
		t.Fatalf("expected 3 calls, got %d", got.TotalCalls)
	}
	if got.SuccessRate != 67 {
		t.Fatalf("expected success rate 67, got %d", got.SuccessRate)
	}
	if got.AvgResponseTime != 300 {
		t.Fatalf("expected average 300ms, got %d", got.AvgResponseTime)
	}
	if got.LastError == nil || *got.LastError != "timeout" {
		t.Fatalf("expected last error timeout, got %v", got.LastError)
	}
}

func TestRecorderReportIncludesIdleProviders(t *testing.T) {
	report := NewRecorder().Report()
	if len(report) != len(All()) {
		t.Fatalf("expected %d providers, got %d", len(All()), len(report))
	}
	idle := report["skyworkAi"]
	if idle.TotalCalls != 0 || idle.SuccessRate != 0 || idle.AvgResponseTime != 0 || idle.LastError != nil {
		t.Fatalf("expected zero report for idle provider, got %+v", idle)
	}
}
