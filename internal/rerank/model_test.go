package rerank

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita2206/probe/internal/config"
	probeerrors "github.com/nikita2206/probe/internal/errors"
)

func withFakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestResolveCustomModel_MissingWeightsFileFailsWithModelMissing(t *testing.T) {
	withFakeHome(t)
	desc := config.CustomReranker{ModelFile: "model.bin"}
	_, err := ResolveCustomModel("my-model", desc)
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindModelMissing))
}

func TestResolveCustomModel_AllFilesPresentSucceeds(t *testing.T) {
	home := withFakeHome(t)
	cacheDir := filepath.Join(home, ".probe", "models", "my-model")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	for _, name := range []string{"model.bin", "extra.txt", "tokenizer.json", "config.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, name), []byte("x"), 0o644))
	}

	desc := config.CustomReranker{ModelFile: "model.bin", AdditionalFiles: []string{"extra.txt"}}
	m, err := ResolveCustomModel("my-model", desc)
	require.NoError(t, err)
	assert.Equal(t, "my-model", m.ID())

	scores, err := m.Score(context.Background(), "query", []string{"query"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
}

func TestResolveCustomModel_MissingTokenizerArtifactFailsWithModelMissing(t *testing.T) {
	home := withFakeHome(t)
	cacheDir := filepath.Join(home, ".probe", "models", "my-model")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "model.bin"), []byte("x"), 0o644))

	desc := config.CustomReranker{ModelFile: "model.bin"}
	_, err := ResolveCustomModel("my-model", desc)
	require.Error(t, err)
	assert.True(t, probeerrors.IsKind(err, probeerrors.KindModelMissing))
}
