package db

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPoolStats_JSONShape(t *testing.T) {
	stats := &PoolStats{
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal pool stats: %v", err)
	}
	for _, key := range []string{"total_conns", "idle_conns", "acquired_conns", "max_conns", "healthy"} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("expected key %q in pool stats JSON: %s", key, raw)
		}
	}
}

func TestPoolStats_Unhealthy(t *testing.T) {
	stats := &PoolStats{TotalConns: 0, Healthy: false}
	if stats.Healthy {
		t.Error("expected Healthy to be false when TotalConns is 0")
	}
}
