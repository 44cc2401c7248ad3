package languages

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// pythonQuery is a single-level extractor, scoped down from the teacher's
// setupPython() query: top-level functions, methods nested one level
// inside a class body, and class declarations.
const pythonQuery = `
(class_definition name: (identifier) @class.name body: (block) @class.body) @class
(function_definition name: (identifier) @function.name body: (block) @function.body) @function
`

// PythonProcessor extracts top-level functions/methods and classes.
type PythonProcessor struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewPythonProcessor() *PythonProcessor {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		return &PythonProcessor{}
	}
	query, _ := tree_sitter.NewQuery(lang, pythonQuery)
	return &PythonProcessor{parser: p, query: query}
}

func (pp *PythonProcessor) CanProcess(ext string) bool {
	return ext == ".py" && pp.query != nil
}

func (pp *PythonProcessor) Chunk(source []byte, relPath string) ([]chunker.ExtractedChunk, error) {
	tree := parseSource(pp.parser, source)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var chunks []chunker.ExtractedChunk
	walkQuery(pp.query, tree, source, func(caps captureSet) {
		switch {
		case caps["class"] != nil:
			chunks = append(chunks, singleChunk(caps["class"], caps["class.name"], caps["class.body"], source, types.ChunkTypeClass))
		case caps["function"] != nil:
			// A method nested inside a class body still matches this same
			// pattern (tree-sitter queries match any depth by default);
			// chunk_type stays "function" for both since the query has no
			// way to tell a bound method from a module-level function
			// without a parent check this lighter extractor skips.
			chunks = append(chunks, singleChunk(caps["function"], caps["function.name"], caps["function.body"], source, types.ChunkTypeFunction))
		}
	})
	return chunks, nil
}
