package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Benchmark_Collector_RecordEvaluation benchmarks evaluation recording
func Benchmark_Collector_RecordEvaluation(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordEvaluation("uk-skilled-worker", "likely", 100*time.Millisecond)
	}
}

// Benchmark_Collector_RecordEvaluation_Parallel benchmarks parallel evaluation recording
func Benchmark_Collector_RecordEvaluation_Parallel(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			collector.RecordEvaluation("uk-skilled-worker", "likely", 100*time.Millisecond)
		}
	})
}

// Benchmark_Collector_RecordRequirements benchmarks requirement tallying
func Benchmark_Collector_RecordRequirements(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordRequirements("passed", 10)
	}
}

// Benchmark_Collector_RecordJudgment benchmarks judgment recording
func Benchmark_Collector_RecordJudgment(b *testing.B) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordJudgment("ok", 800*time.Millisecond)
	}
}

// Benchmark_CardinalityLimiter_Allow benchmarks the limiter fast path
func Benchmark_CardinalityLimiter_Allow(b *testing.B) {
	limiter := NewCardinalityLimiter(1000)
	limiter.Allow("existing")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("existing")
	}
}
