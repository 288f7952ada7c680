package services

import (
	"testing"
	"time"

	"pfdash/internal/cache"
	"pfdash/internal/calc"
	"pfdash/internal/core"
)

func testSnapshot() core.Snapshot {
	return core.Snapshot{
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		MonthLabel:  "2026-03",
		Tables: core.Tables{
			Income: []core.IncomeRow{{Source: "Salary", MonthlyAmount: 4000}},
			Fixed:  []core.ExpenseRow{{Expense: "Rent", MonthlyAmount: 1200}},
		},
	}
}

func TestSignatureStableAcrossGeneratedAt(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.GeneratedAt = b.GeneratedAt.Add(48 * time.Hour)

	sigA, err := Signature(a)
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	sigB, err := Signature(b)
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	if sigA != sigB {
		t.Errorf("signatures differ for same data: %s vs %s", sigA, sigB)
	}
	if len(sigA) != 64 {
		t.Errorf("expected sha256 hex digest, got %q", sigA)
	}
}

func TestSignatureChangesWithData(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.Tables.Income[0].MonthlyAmount = 4001

	sigA, _ := Signature(a)
	sigB, _ := Signature(b)
	if sigA == sigB {
		t.Error("signatures should differ when amounts differ")
	}
}

func TestSignatureIgnoresSanitizedNoise(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.Tables.Income[0].Source = "  Salary "
	b.Tables.Fixed[0].MonthlyAmount = 1200

	sigA, _ := Signature(a)
	sigB, _ := Signature(b)
	if sigA != sigB {
		t.Error("signatures should match after sanitization normalizes names")
	}
}

type countingCache struct {
	cache.Cache[calc.MetricsResult]
	sets int
}

func (c *countingCache) Set(key string, data calc.MetricsResult) {
	c.sets++
	c.Cache.Set(key, data)
}

func TestMetricsServiceCachesBySignature(t *testing.T) {
	inner := cache.NewLRU[calc.MetricsResult](8, time.Minute)
	counting := &countingCache{Cache: inner}
	svc := NewMetricsService(counting)

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	first, sig1, err := svc.Compute(testSnapshot(), now)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, sig2, err := svc.Compute(testSnapshot(), now)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if sig1 != sig2 {
		t.Fatalf("signatures differ: %s vs %s", sig1, sig2)
	}
	if counting.sets != 1 {
		t.Errorf("expected a single cache fill, got %d", counting.sets)
	}
	if first.NetIncome != 4000 || second.NetIncome != first.NetIncome {
		t.Errorf("unexpected results: first=%v second=%v", first.NetIncome, second.NetIncome)
	}

	svc.Invalidate(sig1)
	if _, ok := inner.Get(sig1); ok {
		t.Error("Invalidate should evict the cached result")
	}
}

func TestMetricsServiceNilCache(t *testing.T) {
	svc := NewMetricsService(nil)
	result, sig, err := svc.Compute(testSnapshot(), time.Now())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if sig == "" || result.TotalIncome != 4000 {
		t.Errorf("unexpected result: sig=%q total=%v", sig, result.TotalIncome)
	}
}
