package monitor

import (
	"testing"
	"time"
)

func TestInMemoryCollector_Aggregates(t *testing.T) {
	c := NewInMemoryCollector()

	c.Record(StageMetrics{Stage: StageEmbed, Duration: 100 * time.Millisecond, Success: true})
	c.Record(StageMetrics{Stage: StageEmbed, Duration: 300 * time.Millisecond, Success: true})
	c.Record(StageMetrics{Stage: StageSearch, Duration: 20 * time.Millisecond, Success: false, Error: "timeout"})

	stats := c.Snapshot()

	embed, ok := stats.Stages[StageEmbed]
	if !ok {
		t.Fatal("embed stage missing from snapshot")
	}
	if embed.Count != 2 || embed.Failures != 0 {
		t.Errorf("embed counts = %+v", embed)
	}
	if embed.AvgLatencyMs != 200 {
		t.Errorf("embed avg = %f, want 200", embed.AvgLatencyMs)
	}
	if embed.MaxLatencyMs != 300 {
		t.Errorf("embed max = %f, want 300", embed.MaxLatencyMs)
	}

	search := stats.Stages[StageSearch]
	if search.Count != 1 || search.Failures != 1 {
		t.Errorf("search counts = %+v", search)
	}
}

func TestInMemoryCollector_Reset(t *testing.T) {
	c := NewInMemoryCollector()
	c.Record(StageMetrics{Stage: StageInsert, Duration: time.Millisecond, Success: true})

	before := c.Snapshot().Since
	c.Reset()

	stats := c.Snapshot()
	if len(stats.Stages) != 0 {
		t.Errorf("expected empty stages after reset, got %+v", stats.Stages)
	}
	if stats.Since.Before(before) {
		t.Error("reset must advance the window start")
	}
}

func TestNoOpCollector(t *testing.T) {
	c := NewNoOpCollector()
	c.Record(StageMetrics{Stage: StageClassify, Duration: time.Second})
	if got := c.Snapshot(); len(got.Stages) != 0 {
		t.Errorf("no-op collector must not retain data: %+v", got)
	}
}
