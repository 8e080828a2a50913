// Package verify implements spec §4.9's verification layer: it reclassifies
// a Finding about a package (or file) as Verified or Compromised by
// consulting a runtime resolver, a lockfile resolver, or the reviewed-file
// hash whitelist, instead of leaving every match at face value.
package verify

import (
	"context"
	"fmt"

	"github.com/seanhalberthal/shaihulud-scan/internal/hashutil"
	"github.com/seanhalberthal/shaihulud-scan/internal/ioc"
	"github.com/seanhalberthal/shaihulud-scan/internal/resolver"
	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// Package verifies a dependency name against the installed/locked version,
// preferring the runtime resolver (actual installed version) over the
// lockfile (pinned version) when both are available.
func Package(ctx context.Context, name string, runtime *resolver.RuntimeResolver, lock *resolver.LockfileResolver, compromised map[types.CompromisedPackage]bool) types.Verification {
	if runtime != nil {
		if v, ok := runtime.Version(ctx, name); ok {
			return classify(v, compromised[types.CompromisedPackage{Name: name, Version: v}], "Installed version")
		}
	}

	if lock != nil {
		if v, ok := lock.Version(name); ok {
			return classify(v, compromised[types.CompromisedPackage{Name: name, Version: v}], "Lockfile pins to")
		}
	}

	return types.Verification{Status: types.StatusUnknown}
}

func classify(version string, isCompromised bool, prefix string) types.Verification {
	if isCompromised {
		return types.Verification{
			Status: types.StatusCompromised,
			Reason: fmt.Sprintf("%s %s is COMPROMISED", prefix, version),
		}
	}
	return types.Verification{
		Status:     types.StatusVerified,
		Reason:     fmt.Sprintf("%s %s is safe", prefix, version),
		Confidence: "High",
		Method:     types.MethodLockfileMatch,
	}
}

// FileByHash checks path's SHA-256 hash against the reviewed-file
// whitelist in internal/ioc.
func FileByHash(path string, cache *hashutil.Cache) types.Verification {
	hash, err := cache.HashFile(path)
	if err != nil {
		return types.Verification{Status: types.StatusUnknown}
	}

	if vf, ok := ioc.VerifiedFileByHash(hash); ok {
		return types.Verification{
			Status:     types.StatusVerified,
			Reason:     fmt.Sprintf("%s (reviewed by %s on %s)", vf.Reason, vf.ReviewedBy, vf.ReviewedDate),
			Confidence: "High",
			Method:     types.MethodCodePatternAnalysis,
		}
	}

	return types.Verification{Status: types.StatusUnknown}
}
