// Package scanner walks a project tree and yields the files that should be
// indexed, per spec.md §4.1: nested ignore files, a configurable max file
// size, and binary-file rejection by extension and content sniffing. The
// walk itself — filepath.Walk plus a visited-real-path map that skips a
// directory whose resolved path was already walked — is grounded on the teacher's
// internal/indexing.FileScanner.ScanDirectory / CountFiles. filepath.Walk
// does not follow symbolic links, so a symlinked directory is never
// descended into, whether its target is inside the root or not.
package scanner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/types"
)

const probeDir = ".probe"

// FileScanner walks a project root, applying ignore rules and binary/size
// filters, and yields the files a LanguageProcessor should chunk.
type FileScanner struct {
	root        string
	ignore      *IgnoreMatcher
	maxFileSize int64
}

// New creates a FileScanner rooted at root. extraExclude are additional
// root-anchored patterns from probe.yml's scan.exclude.
func New(root string, maxFileSize int64, extraExclude []string) *FileScanner {
	if maxFileSize <= 0 {
		maxFileSize = 1 << 20
	}
	return &FileScanner{
		root:        root,
		ignore:      NewIgnoreMatcher(root, extraExclude),
		maxFileSize: maxFileSize,
	}
}

// Scan walks the tree rooted at s.root and invokes visit for every file
// that passes ignore, binary, and size filtering. Errors reading or
// stat-ing an individual entry are collected as io_error and returned as a
// MultiError at the end; the walk continues past them, mirroring the
// teacher's "continue despite errors" stance in ScanDirectory. An error
// returned by visit stops the walk and is reported the same way, wrapped
// as an io_error in that MultiError.
func (s *FileScanner) Scan(ctx context.Context, visit func(types.ScanResult) error) error {
	visitedDirs := make(map[string]bool)
	var errs []error

	walkErr := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			errs = append(errs, probeerrors.NewIoError(path, err))
			return nil
		}

		relPath, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if path == s.root {
				return nil
			}
			if relPath == probeDir {
				return filepath.SkipDir
			}
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			s.ignore.LoadDir(relPath)
			if s.ignore.ShouldIgnore(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.ignore.ShouldIgnore(relPath, false) {
			return nil
		}
		if info.Size() > s.maxFileSize {
			return nil
		}
		if isBinaryByExtension(relPath) {
			return nil
		}
		if isBinary, err := s.sniffBinary(path); err != nil {
			errs = append(errs, probeerrors.NewIoError(path, err))
			return nil
		} else if isBinary {
			return nil
		}

		return visit(types.ScanResult{
			AbsolutePath: path,
			RelativePath: relPath,
			Size:         info.Size(),
			ModTimeNano:  info.ModTime().UnixNano(),
		})
	})

	if walkErr != nil && walkErr != context.Canceled && walkErr != context.DeadlineExceeded {
		errs = append(errs, probeerrors.NewIoError(s.root, walkErr))
	} else if walkErr != nil {
		return probeerrors.NewCancelled(walkErr)
	}

	if me := probeerrors.NewMultiError(errs); me != nil {
		return me
	}
	return nil
}

func (s *FileScanner) sniffBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return isBinaryContent(buf[:n]), nil
}
