package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Resolvers bundles both resolution sources verify.Package consults, in
// the runtime-first priority order spec §4.9 requires.
type Resolvers struct {
	Lockfile *LockfileResolver
	Runtime  *RuntimeResolver
}

// Load resolves the lockfile and (when verify is true) the runtime package
// tree concurrently, since they're independent I/O-bound lookups: the
// lockfile read is a single parse, the runtime query shells out to
// pnpm/npm and can take seconds on a large tree.
func Load(ctx context.Context, dir string, verify bool) Resolvers {
	var r Resolvers
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.Lockfile = LoadLockfile(dir)
		return nil
	})

	if verify {
		g.Go(func() error {
			r.Runtime = NewRuntimeResolver(ctx, dir)
			return nil
		})
	}

	_ = g.Wait()
	return r
}
