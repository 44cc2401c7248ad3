package index

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/nikita2206/probe/internal/config"
	"github.com/nikita2206/probe/internal/types"
)

// ApplyScorePolicy multiplies a hit's BM25 score by spec.md §4.5's
// post-query penalty/boost policy: class-kind chunks are discounted,
// test-path chunks are discounted further, main-entrypoint-path chunks are
// boosted. Glob matching reuses doublestar (already wired for ignore-file
// "**" patterns in internal/scanner), consistent with the rest of the
// module's path-glob handling.
func ApplyScorePolicy(policy config.ScorePolicy, c types.Chunk, score float64) float64 {
	if c.ChunkType == types.ChunkTypeClass && policy.ClassMultiplier != 0 {
		score *= policy.ClassMultiplier
	}
	if matchesAny(policy.TestGlobs, c.Path) && policy.TestMultiplier != 0 {
		score *= policy.TestMultiplier
	}
	if matchesAny(policy.MainGlobs, c.Path) && policy.MainMultiplier != 0 {
		score *= policy.MainMultiplier
	}
	return score
}

func matchesAny(globs []string, path string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}
