package engine

import (
	"context"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// Reorder permutes Inner's output into Z-order, as cache-sorting engines do.
type Reorder struct {
	Inner Engine
}

func (r *Reorder) Name() string { return r.Inner.Name() + "+zorder" }

func (r *Reorder) Acquire(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	snap, err := r.Inner.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	return snap.Permute(snapshot.MortonOrder(snap))
}
