package authgate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newBenchmarkGate(b *testing.B) (*Gate, func()) {
	b.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	gate, err := New().WithConfig(gateTestConfig()).WithRedis(rdb).Build()
	if err != nil {
		b.Fatalf("gate build failed: %v", err)
	}

	cleanup := func() {
		gate.Close()
		_ = rdb.Close()
		mr.Close()
	}
	return gate, cleanup
}

func BenchmarkEvaluateProtected(b *testing.B) {
	gate, cleanup := newBenchmarkGate(b)
	defer cleanup()

	_, cookies, err := gate.EstablishSession(context.Background(), "alice", "tenant-1", []string{"member"})
	if err != nil {
		b.Fatalf("establish session: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := gate.Evaluate(context.Background(), r); d.Kind != DecisionAllow {
			b.Fatalf("unexpected decision %v (%s)", d.Kind, d.Reason)
		}
	}
}

func BenchmarkEvaluatePublic(b *testing.B) {
	gate, cleanup := newBenchmarkGate(b)
	defer cleanup()

	r := httptest.NewRequest(http.MethodGet, "/login", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := gate.Evaluate(context.Background(), r); d.Kind != DecisionAllow {
			b.Fatalf("unexpected decision %v (%s)", d.Kind, d.Reason)
		}
	}
}

func BenchmarkEvaluateBypass(b *testing.B) {
	gate, cleanup := newBenchmarkGate(b)
	defer cleanup()

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := gate.Evaluate(context.Background(), r); d.Kind != DecisionBypass {
			b.Fatalf("unexpected decision %v", d.Kind)
		}
	}
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricRequestAllowed)
		}
	})
}
