package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pfdash/internal/cache"
	"pfdash/internal/calc"
	"pfdash/internal/core"
)

// MetricsService computes aggregate metrics for a snapshot, caching results
// keyed by the snapshot signature.
type MetricsService struct {
	cache cache.Cache[calc.MetricsResult]
}

func NewMetricsService(c cache.Cache[calc.MetricsResult]) *MetricsService {
	if c == nil {
		c = cache.Noop[calc.MetricsResult]{}
	}
	return &MetricsService{cache: c}
}

// Signature returns the sha256 hex digest of the sanitized snapshot document.
// Two snapshots with identical data after sanitization share a signature.
func Signature(s core.Snapshot) (string, error) {
	s = core.Sanitize(s)
	// The signature covers data only, not when the snapshot was taken.
	s.GeneratedAt = time.Time{}
	doc, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:]), nil
}

// Compute sanitizes the snapshot and returns its metrics, serving repeated
// requests for the same data from the cache.
func (s *MetricsService) Compute(snap core.Snapshot, now time.Time) (calc.MetricsResult, string, error) {
	sig, err := Signature(snap)
	if err != nil {
		return calc.MetricsResult{}, "", err
	}

	if result, ok := s.cache.Get(sig); ok {
		slog.Debug("Metrics cache hit", "signature", sig)
		return result, sig, nil
	}

	result := calc.Compute(core.Sanitize(snap), now)
	s.cache.Set(sig, result)
	return result, sig, nil
}

// Invalidate drops a cached result, if present.
func (s *MetricsService) Invalidate(signature string) {
	s.cache.Delete(signature)
}
