package travel

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"

	"field-scheduler/internal/geocoding"
	"field-scheduler/internal/models"
)

type memoEntry struct {
	key string
	ok  bool
}

// memoResolver resolves each distinct location at most once per batch.
// Concurrent lookups of the same location share one underlying call, which
// runs on the batch context so a caller giving up does not cut it short for
// the others.
type memoResolver struct {
	ctx     context.Context
	base    ResolveFunc
	group   singleflight.Group
	results *xsync.Map[string, memoEntry]
}

func newMemoResolver(batchCtx context.Context, base ResolveFunc) *memoResolver {
	return &memoResolver{
		ctx:     batchCtx,
		base:    base,
		results: xsync.NewMap[string, memoEntry](),
	}
}

func memoKey(ref models.LocationRef) string {
	if ref.Coordinates != nil {
		return "c:" + ref.Coordinates.Key()
	}
	if addr := geocoding.NormalizeAddress(ref.Address); addr != "" {
		return "a:" + addr
	}
	return ""
}

func (m *memoResolver) resolve(ctx context.Context, ref models.LocationRef) (string, bool) {
	key := memoKey(ref)
	if key == "" {
		return "", false
	}
	if e, ok := m.results.Load(key); ok {
		return e.key, e.ok
	}

	if ctx.Err() != nil {
		return "", false
	}

	ch := m.group.DoChan(key, func() (any, error) {
		if e, ok := m.results.Load(key); ok {
			return e, nil
		}
		return m.lookup(key, ref), nil
	})
	select {
	case r := <-ch:
		e := r.Val.(memoEntry)
		return e.key, e.ok
	case <-ctx.Done():
		return "", false
	}
}

func (m *memoResolver) lookup(key string, ref models.LocationRef) (e memoEntry) {
	defer func() {
		if r := recover(); r != nil {
			e = memoEntry{}
		}
	}()
	loc, ok := m.base(m.ctx, ref)
	e = memoEntry{key: loc, ok: ok}
	// a lookup cut off by the batch deadline says nothing about the location
	if m.ctx.Err() == nil {
		m.results.Store(key, e)
	}
	return e
}

func (m *memoResolver) size() int {
	return m.results.Size()
}
