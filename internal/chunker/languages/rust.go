package languages

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/nikita2206/probe/internal/chunker"
	"github.com/nikita2206/probe/internal/types"
)

// rustQuery is a single-level extractor, scoped down from the teacher's
// setupRust() query to functions, impl/trait methods, structs, enums, and
// traits.
const rustQuery = `
(function_item name: (identifier) @function.name body: (block) @function.body) @function
(struct_item name: (type_identifier) @class.name) @class
(enum_item name: (type_identifier) @class.name) @class
(trait_item name: (type_identifier) @interface.name body: (declaration_list) @interface.body) @interface
`

// RustProcessor extracts top-level functions, structs, enums, and traits.
type RustProcessor struct {
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewRustProcessor() *RustProcessor {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	if err := p.SetLanguage(lang); err != nil {
		return &RustProcessor{}
	}
	query, _ := tree_sitter.NewQuery(lang, rustQuery)
	return &RustProcessor{parser: p, query: query}
}

func (rp *RustProcessor) CanProcess(ext string) bool {
	return ext == ".rs" && rp.query != nil
}

func (rp *RustProcessor) Chunk(source []byte, relPath string) ([]chunker.ExtractedChunk, error) {
	tree := parseSource(rp.parser, source)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	var chunks []chunker.ExtractedChunk
	walkQuery(rp.query, tree, source, func(caps captureSet) {
		switch {
		case caps["function"] != nil:
			chunks = append(chunks, singleChunk(caps["function"], caps["function.name"], caps["function.body"], source, types.ChunkTypeFunction))
		case caps["class"] != nil:
			// the query captures no body for struct/enum items, so the
			// whole node is the declaration and the body is empty.
			chunks = append(chunks, singleChunk(caps["class"], caps["class.name"], nil, source, types.ChunkTypeClass))
		case caps["interface"] != nil:
			chunks = append(chunks, singleChunk(caps["interface"], caps["interface.name"], caps["interface.body"], source, types.ChunkTypeInterface))
		}
	})
	return chunks, nil
}
