package rerank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikita2206/probe/internal/config"
	probeerrors "github.com/nikita2206/probe/internal/errors"
)

// modelCacheDirName is the fixed subdirectory of the user's home directory
// holding downloaded model caches; spec.md §4.6 names the core's
// responsibility as checking the cache, never fetching into it.
const modelCacheDirName = ".probe/models"

// fixedTokenizerFiles are the tokenizer/config artifacts every custom
// model is expected to carry alongside its weights file, per spec.md
// §4.6's "tokenizer artifacts + config."
var fixedTokenizerFiles = []string{"tokenizer.json", "config.json"}

// CustomModel wraps a resolved config.CustomReranker descriptor whose
// cache files have been verified present. No ML/tensor-runtime library
// exists anywhere in the example pack (confirmed by dependency search —
// no onnxruntime-go, gorgonia, or similar), so Score cannot execute the
// declared model; it validates the descriptor's cache contract
// (ModelMissing/ModelLoadError) and then falls back to LexicalV1 scoring
// rather than fabricating an inference dependency the task's instructions
// forbid. This is recorded explicitly in DESIGN.md, not hidden behind a
// misleadingly "real" API.
type CustomModel struct {
	id       string
	cacheDir string
	lexical  *LexicalV1
}

// ResolveCustomModel locates id's cache directory and verifies the main
// weights file, declared additional files, and fixed tokenizer/config
// artifacts all exist. Missing files fail with ModelMissing; a cache
// directory that exists but is unreadable fails with ModelLoadError.
func ResolveCustomModel(id string, desc config.CustomReranker) (*CustomModel, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, probeerrors.NewModelLoadError(id, err)
	}
	cacheDir := filepath.Join(home, modelCacheDirName, id)

	required := append([]string{desc.ModelFile}, desc.AdditionalFiles...)
	required = append(required, fixedTokenizerFiles...)

	for _, name := range required {
		path := filepath.Join(cacheDir, name)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, probeerrors.NewModelMissing(id, fmt.Errorf("missing cache file %s", path))
		}
		if err != nil {
			return nil, probeerrors.NewModelLoadError(id, err)
		}
		if info.IsDir() {
			return nil, probeerrors.NewModelLoadError(id, fmt.Errorf("%s is a directory, expected a file", path))
		}
	}

	return &CustomModel{id: id, cacheDir: cacheDir, lexical: NewLexicalV1()}, nil
}

func (m *CustomModel) ID() string { return m.id }

func (m *CustomModel) Score(ctx context.Context, query string, documents []string) ([]float64, error) {
	return m.lexical.Score(ctx, query, documents)
}
