package engine

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/types"
)

// UpdateResult reports what a call to Update/Rebuild did, per spec.md
// §4.7's "update returns counts of added/modified/deleted files plus any
// partial failures".
type UpdateResult struct {
	Rebuilt bool
	Added   int
	Modified int
	Deleted int
	Errors  *probeerrors.MultiError // non-fatal per-file failures, nil if none
}

// Update scans root, diffs against the committed metadata, and applies the
// delta to the index. If the engine was opened against a stale schema it
// rebuilds from empty instead (spec.md §4.7).
func (e *Engine) Update(ctx context.Context) (UpdateResult, error) {
	if e.dirty {
		return e.Rebuild(ctx)
	}
	return e.update(ctx)
}

func (e *Engine) update(ctx context.Context) (UpdateResult, error) {
	var scanned []types.ScanResult
	scanErr := e.scan.Scan(ctx, func(sr types.ScanResult) error {
		scanned = append(scanned, sr)
		return nil
	})
	// A MultiError from the scanner is collected stat/readdir failures on
	// individual entries, not fatal to the update as a whole; anything else
	// (in particular a Cancelled wrapper) aborts immediately.
	var scanIssues *probeerrors.MultiError
	if scanErr != nil {
		if me, ok := scanErr.(*probeerrors.MultiError); ok {
			scanIssues = me
		} else {
			return UpdateResult{}, scanErr
		}
	}

	diff := e.meta.Diff(scanned)

	writer, err := e.search.Writer()
	if err != nil {
		return UpdateResult{}, err
	}
	defer writer.Close()

	// metaUpdates starts as a copy of every record this store currently
	// knows about. A path whose goroutine never actually ran (abandoned on
	// cancellation) keeps its prior entry here untouched, which matches
	// the index also being untouched for that path - the metadata/index
	// consistency invariant holds even when Update is cancelled midway.
	metaUpdates := make(map[string]types.FileRecord, len(diff.Unchanged)+len(diff.Modified)+len(diff.Deleted))
	for _, sr := range diff.Unchanged {
		if rec, ok := e.meta.Record(sr.RelativePath); ok {
			metaUpdates[sr.RelativePath] = rec
		}
	}
	for _, sr := range diff.Modified {
		if rec, ok := e.meta.Record(sr.RelativePath); ok {
			metaUpdates[sr.RelativePath] = rec
		}
	}
	for _, path := range diff.Deleted {
		if rec, ok := e.meta.Record(path); ok {
			metaUpdates[path] = rec
		}
	}

	var mu sync.Mutex
	var fileIssues []error
	sem := semaphore.NewWeighted(1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parserConcurrency)

	toParse := append(append([]types.ScanResult{}, diff.Added...), diff.Modified...)
	for _, sr := range toParse {
		sr := sr
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // abandon work not yet started; nothing touched, nothing to undo
			}
			content, readErr := os.ReadFile(sr.AbsolutePath)
			if readErr != nil {
				mu.Lock()
				fileIssues = append(fileIssues, probeerrors.NewIoError(sr.RelativePath, readErr))
				mu.Unlock()
				return nil
			}
			chunks, chunkErr := e.chunk.Chunk(content, sr.RelativePath)
			if chunkErr != nil {
				mu.Lock()
				fileIssues = append(fileIssues, probeerrors.NewParseError(sr.RelativePath, chunkErr))
				mu.Unlock()
				return nil
			}

			if err := sem.Acquire(gctx, 1); err != nil {
				return nil // context done while waiting for the writer turn
			}
			// Once the writer turn is acquired this path's delete+insert
			// runs to completion uninterrupted, so no path is ever left
			// half-written in the index.
			writer.DeleteByPath(sr.RelativePath)
			chunkIDs := make([]string, 0, len(chunks))
			var addErr error
			for _, c := range chunks {
				if err := writer.AddChunk(c); err != nil {
					addErr = err
					break
				}
				chunkIDs = append(chunkIDs, c.ChunkID)
			}
			sem.Release(1)
			if addErr != nil {
				return probeerrors.NewIoError(sr.RelativePath, addErr)
			}

			mu.Lock()
			metaUpdates[sr.RelativePath] = types.FileRecord{
				Path:        sr.RelativePath,
				Fingerprint: fingerprintOf(sr),
				ChunkIDs:    chunkIDs,
			}
			mu.Unlock()
			return nil
		})
	}

	for _, path := range diff.Deleted {
		path := path
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			writer.DeleteByPath(path)
			sem.Release(1)

			mu.Lock()
			delete(metaUpdates, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return UpdateResult{}, err
	}

	// An unchanging tree performs no writer/metadata commit at all, per
	// spec.md §8's idempotence property ("second and later calls perform
	// zero writes to the index"), measured by writer-commit count.
	hasChanges := len(diff.Added) > 0 || len(diff.Modified) > 0 || len(diff.Deleted) > 0
	if hasChanges {
		if err := writer.Commit(); err != nil {
			return UpdateResult{}, err
		}
		if err := e.meta.Commit(metaUpdates); err != nil {
			return UpdateResult{}, err
		}
	}

	result := UpdateResult{
		Added:    len(diff.Added),
		Modified: len(diff.Modified),
		Deleted:  len(diff.Deleted),
	}
	allIssues := fileIssues
	if scanIssues != nil {
		allIssues = append(allIssues, scanIssues.Errors...)
	}
	if len(allIssues) > 0 {
		result.Errors = probeerrors.NewMultiError(allIssues)
	}
	return result, nil
}

func fingerprintOf(sr types.ScanResult) types.Fingerprint {
	return types.Fingerprint{Size: sr.Size, ModTimeNano: sr.ModTimeNano}
}
