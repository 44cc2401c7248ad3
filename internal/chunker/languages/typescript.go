package languages

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// typescriptQuery is a single-level extractor, scoped down from the
// teacher's setupTypeScript() query to functions, methods, classes, and
// interfaces.
const typescriptQuery = `
(function_declaration name: (identifier) @function.name body: (statement_block) @function.body) @function
(method_definition name: (property_identifier) @method.name body: (statement_block) @method.body) @method
(class_declaration name: (type_identifier) @class.name body: (class_body) @class.body) @class
(interface_declaration name: (type_identifier) @interface.name body: (interface_body) @interface.body) @interface
`

// TypeScriptProcessor extracts top-level functions, methods, classes, and
// interfaces.
type TypeScriptProcessor struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewTypeScriptProcessor() *TypeScriptProcessor {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := p.SetLanguage(lang); err != nil {
		return &TypeScriptProcessor{}
	}
	query, _ := tree_sitter.NewQuery(lang, typescriptQuery)
	return &TypeScriptProcessor{parser: p, query: query}
}

func (tp *TypeScriptProcessor) CanProcess(ext string) bool {
	return (ext == ".ts" || ext == ".tsx") && tp.query != nil
}

func (tp *TypeScriptProcessor) Chunk(source []byte, relPath string) ([]chunker.ExtractedChunk, error) {
	tree := parseSource(tp.parser, source)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var chunks []chunker.ExtractedChunk
	walkQuery(tp.query, tree, source, func(caps captureSet) {
		switch {
		case caps["function"] != nil:
			chunks = append(chunks, singleChunk(caps["function"], caps["function.name"], caps["function.body"], source, types.ChunkTypeFunction))
		case caps["method"] != nil:
			chunks = append(chunks, singleChunk(caps["method"], caps["method.name"], caps["method.body"], source, types.ChunkTypeMethod))
		case caps["class"] != nil:
			chunks = append(chunks, singleChunk(caps["class"], caps["class.name"], caps["class.body"], source, types.ChunkTypeClass))
		case caps["interface"] != nil:
			chunks = append(chunks, singleChunk(caps["interface"], caps["interface.name"], caps["interface.body"], source, types.ChunkTypeInterface))
		}
	})
	return chunks, nil
}
