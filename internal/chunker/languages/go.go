package languages

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// goQuery is a single-level extractor (top-level function/method/type),
// scoped down from the teacher's setupGo() query.
const goQuery = `
(function_declaration name: (identifier) @function.name body: (block) @function.body) @function
(method_declaration name: (field_identifier) @method.name body: (block) @method.body) @method
(type_declaration (type_spec name: (type_identifier) @type.name type: (struct_type) @type.body)) @type
`

// GoProcessor extracts top-level functions, methods, and struct type
// declarations.
type GoProcessor struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewGoProcessor() *GoProcessor {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := p.SetLanguage(lang); err != nil {
		return &GoProcessor{}
	}
	query, _ := tree_sitter.NewQuery(lang, goQuery)
	return &GoProcessor{parser: p, query: query}
}

func (gp *GoProcessor) CanProcess(ext string) bool {
	return ext == ".go" && gp.query != nil
}

func (gp *GoProcessor) Chunk(source []byte, relPath string) ([]chunker.ExtractedChunk, error) {
	tree := parseSource(gp.parser, source)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var chunks []chunker.ExtractedChunk
	walkQuery(gp.query, tree, source, func(caps captureSet) {
		switch {
		case caps["function"] != nil:
			chunks = append(chunks, singleChunk(caps["function"], caps["function.name"], caps["function.body"], source, types.ChunkTypeFunction))
		case caps["method"] != nil:
			chunks = append(chunks, singleChunk(caps["method"], caps["method.name"], caps["method.body"], source, types.ChunkTypeMethod))
		case caps["type"] != nil:
			chunks = append(chunks, singleChunk(caps["type"], caps["type.name"], caps["type.body"], source, types.ChunkTypeClass))
		}
	})
	return chunks, nil
}

func singleChunk(node, nameNode, bodyNode *tree_sitter.Node, source []byte, chunkType types.ChunkType) chunker.ExtractedChunk {
	decl, body := declarationAndBody(node, source, bodyNode)
	start, end := nodeLines(node)
	return chunker.ExtractedChunk{
		ChunkType:   chunkType,
		ChunkName:   nodeText(nameNode, source),
		Declaration: decl,
		Body:        body,
		StartLine:   start,
		EndLine:     end,
	}
}
