// Package engine implements spec.md §4.7's SearchEngine: the orchestrator
// binding FileScanner, CodeChunker, MetadataStore, SearchIndex, and
// Reranker into open_or_create/update/rebuild/search/stats. Grounded on
// the teacher's top-level pipeline wiring (internal/indexing.pipeline.go
// sequences scan -> parse -> index the same way), generalized to the
// bounded worker-pool model spec.md §5 names.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cespare/xxhash/v2"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/chunker/languages"
	"github.com/nikita2206/probe/internal/config"
	probeerrors "github.com/nikita2206/probe/internal/errors"
	"github.com/nikita2206/probe/internal/index"
	"github.com/nikita2206/probe/internal/metadata"
	"github.com/nikita2206/probe/internal/rerank"
	"github.com/nikita2206/probe/internal/scanner"
	"github.com/nikita2206/probe/internal/types"
)

// EngineVersion is folded into the tokenizer digest so a code change to
// the tokenizer/chunker pipeline can force a rebuild even when a user's
// probe.yml is unchanged, per spec.md §3's "engine version" header field.
const EngineVersion = 1

const (
	metadataFileName = "metadata.bin"
	probeDirName     = ".probe"
)

// Engine is one open project index: the live SearchIndex plus the
// MetadataStore tracking what's currently committed to it.
type Engine struct {
	root     string
	probeDir string
	cfg      *config.Config

	scan    *scanner.FileScanner
	chunk   *chunker.CodeChunker
	meta    *metadata.Store
	search  *index.SearchIndex
	models  *rerank.Registry

	tokenizerDigest uint64
	dirty           bool

	parserConcurrency int
}

// OpenOrCreate loads or initializes the index directory under root/.probe,
// validating the persisted schema header against the engine's compiled-in
// tokenizer digest. A digest mismatch marks the engine dirty. An absent
// metadata file loads as an empty store carrying the current digest, so a
// first open starts clean; a schema-version mismatch fails metadata.Load
// with IndexCorrupt. A dirty engine is resolved lazily, by the next Update (auto
// rebuild) or surfaced as SchemaStale from Search. configPath overrides
// the default <root>/probe.yml location (the CLI's --config flag); pass
// "" to use the default.
func OpenOrCreate(root string, configPath string) (*Engine, error) {
	var cfg *config.Config
	var err error
	if configPath == "" {
		cfg, err = config.Load(root)
	} else {
		cfg, err = config.LoadFromPath(configPath)
	}
	if err != nil {
		return nil, err
	}
	userCfg, err := config.LoadUserConfig()
	if err != nil {
		return nil, err
	}

	probeDir := filepath.Join(root, probeDirName)
	digest := tokenizerDigest(cfg.Stemming)

	meta, err := metadata.Load(filepath.Join(probeDir, metadataFileName), digest)
	if err != nil {
		return nil, err
	}
	searchIdx, err := index.Open(index.ResolveIndexDir(probeDir), cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		root:              root,
		probeDir:          probeDir,
		cfg:               cfg,
		scan:              scanner.New(root, cfg.Scan.MaxFileSize, cfg.Scan.Exclude),
		chunk:             defaultChunker(),
		meta:              meta,
		search:            searchIdx,
		models:            rerank.NewRegistry(userCfg),
		tokenizerDigest:   digest,
		dirty:             meta.SchemaStale(digest),
		parserConcurrency: runtime.NumCPU(),
	}
	return e, nil
}

// defaultChunker wires every LanguageProcessor this module ships, the
// same way the teacher assembles its parser set once at startup rather
// than via package-level registration (internal/parser.NewTreeSitterParser
// calling setupJava/setupGo/... in sequence).
func defaultChunker() *chunker.CodeChunker {
	return chunker.New(
		languages.NewJavaProcessor(),
		languages.NewGoProcessor(),
		languages.NewPythonProcessor(),
		languages.NewJavaScriptProcessor(),
		languages.NewTypeScriptProcessor(),
		languages.NewRustProcessor(),
	)
}

// tokenizerDigest hashes the engine version plus the tokenizer-affecting
// configuration (stemming on/off and language) into the u64 spec.md §3's
// "tokenizer configuration digest" header field names.
func tokenizerDigest(s config.Stemming) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "v%d|%t|%s", EngineVersion, s.Enabled, s.Language)
	return h.Sum64()
}

// Rebuild drops the index directory and metadata file, then runs Update
// from empty (spec.md §4.7).
func (e *Engine) Rebuild(ctx context.Context) (UpdateResult, error) {
	if err := os.RemoveAll(index.ResolveIndexDir(e.probeDir)); err != nil {
		return UpdateResult{}, probeerrors.NewIoError(e.probeDir, err)
	}
	metaPath := filepath.Join(e.probeDir, metadataFileName)
	if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
		return UpdateResult{}, probeerrors.NewIoError(metaPath, err)
	}

	meta, err := metadata.Load(metaPath, e.tokenizerDigest)
	if err != nil {
		return UpdateResult{}, err
	}
	searchIdx, err := index.Open(index.ResolveIndexDir(e.probeDir), e.cfg)
	if err != nil {
		return UpdateResult{}, err
	}
	e.meta = meta
	e.search = searchIdx
	e.dirty = false

	result, err := e.update(ctx)
	if err != nil {
		return UpdateResult{}, err
	}
	result.Rebuilt = true
	return result, nil
}

// ModelRegistry exposes the resolved built-in/custom reranker registry
// for the list-models CLI command.
func (e *Engine) ModelRegistry() *rerank.Registry {
	return e.models
}

// Stats is spec.md §4.7's stats() report.
type Stats struct {
	ChunkCount    int
	FileCount     int
	IndexSizeBytes int64
	SchemaVersion int
}

// Stats reports document/file counts, on-disk index size, and schema
// version.
func (e *Engine) Stats() (Stats, error) {
	size, err := dirSize(e.probeDir)
	if err != nil {
		return Stats{}, probeerrors.NewIoError(e.probeDir, err)
	}
	return Stats{
		ChunkCount:     e.search.ChunkCount(),
		FileCount:      e.search.FileCount(),
		IndexSizeBytes: size,
		SchemaVersion:  EngineVersion,
	}, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return 0, nil
	}
	return total, err
}

// ShowChunks chunks a single file relative to root for the show-chunks CLI
// debugging command, without touching the index or metadata.
func (e *Engine) ShowChunks(relPath string) ([]types.Chunk, error) {
	content, err := os.ReadFile(filepath.Join(e.root, relPath))
	if err != nil {
		return nil, probeerrors.NewIoError(relPath, err)
	}
	chunks, err := e.chunk.Chunk(content, filepath.ToSlash(relPath))
	if err != nil {
		return nil, probeerrors.NewParseError(relPath, err)
	}
	return chunks, nil
}
