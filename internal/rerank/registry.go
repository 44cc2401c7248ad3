package rerank

import (
	"sort"

	"github.com/nikita2206/probe/internal/config"
	probeerrors "github.com/nikita2206/probe/internal/errors"
)

// Registry resolves a model id (built-in or custom) to a Reranker and
// reports the names available for list-models.
type Registry struct {
	builtins map[string]Reranker
	custom   map[string]config.CustomReranker
	defaultID string
}

// NewRegistry builds a registry from the optional user configuration
// (spec.md §6's ~/.probe/config.yaml custom_rerankers map).
func NewRegistry(userCfg *config.UserConfig) *Registry {
	r := &Registry{
		builtins: map[string]Reranker{LexicalV1ID: NewLexicalV1()},
		custom:   map[string]config.CustomReranker{},
	}
	if userCfg != nil {
		r.custom = userCfg.CustomRerankers
		r.defaultID = userCfg.DefaultReranker
	}
	return r
}

// DefaultID returns the configured default_reranker, or the built-in
// lexical-v1 model if unset (DESIGN.md's Open Question (i) resolution).
func (r *Registry) DefaultID() string {
	if r.defaultID != "" {
		return r.defaultID
	}
	return LexicalV1ID
}

// Resolve returns the Reranker for id, checking built-ins first.
// Unrecognized ids fail with ModelMissing.
func (r *Registry) Resolve(id string) (Reranker, error) {
	if model, ok := r.builtins[id]; ok {
		return model, nil
	}
	if desc, ok := r.custom[id]; ok {
		return ResolveCustomModel(id, desc)
	}
	return nil, probeerrors.NewModelMissing(id, nil)
}

// BuiltinNames and CustomNames list model ids for the list-models CLI
// command, each sorted for stable output.
func (r *Registry) BuiltinNames() []string {
	return sortedKeys(r.builtins)
}

func (r *Registry) CustomNames() []string {
	names := make([]string, 0, len(r.custom))
	for name := range r.custom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]Reranker) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
