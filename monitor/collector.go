// Package monitor aggregates per-stage latency for the detection pipeline.
package monitor

import (
	"sync"
	"time"
)

type Collector interface {
	Record(m StageMetrics)
	Snapshot() Stats
}

// InMemoryCollector accumulates stage timings behind a mutex.
type InMemoryCollector struct {
	mu     sync.RWMutex
	stages map[string]*stageAccum
	since  time.Time
}

type stageAccum struct {
	count    int64
	failures int64
	totalMs  float64
	maxMs    float64
}

func NewInMemoryCollector() *InMemoryCollector {
	return &InMemoryCollector{
		stages: make(map[string]*stageAccum),
		since:  time.Now(),
	}
}

func (c *InMemoryCollector) Record(m StageMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc := c.stages[m.Stage]
	if acc == nil {
		acc = &stageAccum{}
		c.stages[m.Stage] = acc
	}

	ms := float64(m.Duration) / float64(time.Millisecond)
	acc.count++
	acc.totalMs += ms
	if ms > acc.maxMs {
		acc.maxMs = ms
	}
	if !m.Success {
		acc.failures++
	}
}

func (c *InMemoryCollector) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Stages: make(map[string]StageStats, len(c.stages)),
		Since:  c.since,
	}
	for stage, acc := range c.stages {
		stats.Stages[stage] = StageStats{
			Count:        acc.count,
			Failures:     acc.failures,
			AvgLatencyMs: acc.totalMs / float64(acc.count),
			MaxLatencyMs: acc.maxMs,
		}
	}
	return stats
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = make(map[string]*stageAccum)
	c.since = time.Now()
}

// NoOpCollector discards all recordings.
type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector { return &NoOpCollector{} }

func (c *NoOpCollector) Record(m StageMetrics) {}

func (c *NoOpCollector) Snapshot() Stats { return Stats{} }
