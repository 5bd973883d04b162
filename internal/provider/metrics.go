package provider

import (
	"math"
	"sync"
	"time"
)

// Metric accumulates call outcomes for one provider.
type Metric struct {
	SuccessCount int64
	FailureCount int64
	TotalLatency time.Duration
	LastError    string
}

// Report is the externally visible summary of a Metric.
type Report struct {
	SuccessRate     int     `json:"successRate"`
	TotalCalls      int64   `json:"totalCalls"`
	AvgResponseTime int64   `json:"avgResponseTime"`
	LastError       *string `json:"lastError"`
}

// Recorder keeps per-provider call statistics.
type Recorder struct {
	mu      sync.Mutex
	metrics [count]Metric
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordSuccess adds a successful call that took d in total.
func (r *Recorder) RecordSuccess(id ID, d time.Duration) {
	if !id.valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := &r.metrics[id]
	m.SuccessCount++
	m.TotalLatency += d
}

// RecordFailure adds a failed call; err becomes the provider's last error.
func (r *Recorder) RecordFailure(id ID, d time.Duration, err error) {
	if !id.valid() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := &r.metrics[id]
	m.FailureCount++
	m.TotalLatency += d
	if err != nil {
		m.LastError = err.Error()
	}
}

// Metric returns a copy of the provider's counters.
func (r *Recorder) Metric(id ID) Metric {
	if !id.valid() {
		return Metric{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics[id]
}

// Report summarises every provider keyed by wire name.
func (r *Recorder) Report() map[string]Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Report, count)
	for id := ID(0); id < count; id++ {
		out[id.String()] = summarise(r.metrics[id])
	}
	return out
}

func summarise(m Metric) Report {
	total := m.SuccessCount + m.FailureCount
	rep := Report{TotalCalls: total}
	if total > 0 {
		rep.SuccessRate = int(math.Round(float64(m.SuccessCount) / float64(total) * 100))
		rep.AvgResponseTime = int64(math.Round(float64(m.TotalLatency.Milliseconds()) / float64(total)))
	}
	if m.LastError != "" {
		msg := m.LastError
		rep.LastError = &msg
	}
	return rep
}
