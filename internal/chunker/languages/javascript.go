package languages

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// javascriptQuery is a single-level extractor, scoped down from the
// teacher's setupJavaScript() query to functions, methods, and classes.
const javascriptQuery = `
(function_declaration name: (identifier) @function.name body: (statement_block) @function.body) @function
(method_definition name: (property_identifier) @method.name body: (statement_block) @method.body) @method
(class_declaration name: (identifier) @class.name body: (class_body) @class.body) @class
`

// JavaScriptProcessor extracts top-level functions, methods, and classes.
type JavaScriptProcessor struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewJavaScriptProcessor() *JavaScriptProcessor {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	if err := p.SetLanguage(lang); err != nil {
		return &JavaScriptProcessor{}
	}
	query, _ := tree_sitter.NewQuery(lang, javascriptQuery)
	return &JavaScriptProcessor{parser: p, query: query}
}

func (jp *JavaScriptProcessor) CanProcess(ext string) bool {
	return (ext == ".js" || ext == ".jsx") && jp.query != nil
}

func (jp *JavaScriptProcessor) Chunk(source []byte, relPath string) ([]chunker.ExtractedChunk, error) {
	tree := parseSource(jp.parser, source)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var chunks []chunker.ExtractedChunk
	walkQuery(jp.query, tree, source, func(caps captureSet) {
		switch {
		case caps["function"] != nil:
			chunks = append(chunks, singleChunk(caps["function"], caps["function.name"], caps["function.body"], source, types.ChunkTypeFunction))
		case caps["method"] != nil:
			chunks = append(chunks, singleChunk(caps["method"], caps["method.name"], caps["method.body"], source, types.ChunkTypeMethod))
		case caps["class"] != nil:
			chunks = append(chunks, singleChunk(caps["class"], caps["class.name"], caps["class.body"], source, types.ChunkTypeClass))
		}
	})
	return chunks, nil
}
