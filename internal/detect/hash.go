// Package detect implements the independent detector passes named in spec
// §4: each function walks a scan directory and returns an owned list of
// findings, sharing no mutable state with any other detector.
package detect

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/pathnorm"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
	"github.com/seanhalberthal/shaihulud-scan/internal/walk"
)

// MaliciousHashes implements the malicious-hash detector (spec §4.3): every
// js/ts/json file is hashed and tested against hashes, on a worker pool
// bounded by parallelism.
func MaliciousHashes(root string, hashes map[string]bool, cache *hashutil.Cache, parallelism int) []types.Finding {
	files := walk.Files(root, "js", "ts", "json")
	if len(files) == 0 {
		return nil
	}
	if parallelism < 1 {
		parallelism = 1
	}

	findings := make([]types.Finding, len(files))
	hit := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			hex, err := cache.HashFile(f)
			if err != nil {
				return nil // unreadable file: skipped, not fatal (spec §7)
			}
			if hashes[hex] {
				hit[i] = true
				findings[i] = types.NewFinding(pathnorm.Normalize(f), "Hash: "+hex, types.High, "malicious_hash")
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []types.Finding
	for i, ok := range hit {
		if ok {
			out = append(out, findings[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}
