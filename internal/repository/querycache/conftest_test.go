package querycache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/domain/query"
)

// mockCompiler counts calls and delegates to query.Compile.
type mockCompiler struct {
	calls int
}

func (m *mockCompiler) Compile(_ context.Context, src string) (*query.Query, error) {
	m.calls++
	return query.Compile(src)
}

func newTestCache(t *testing.T, size int, ttl time.Duration) (*CachedCompiler, *mockCompiler) {
	t.Helper()
	inner := &mockCompiler{}
	return New(inner, size, ttl, nil, zap.NewNop()), inner
}
