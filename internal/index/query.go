package index

import (
	"fmt"
	"strconv"
	"strings"

	probeerrors "github.com/nikita2206/probe/internal/errors"
)

// fieldAliases maps the field-prefix syntax spec.md §4.5 names (path:,
// content:) plus a few natural synonyms onto the schema's tokenized field
// names. content: targets body, the field the name most naturally refers
// to for source code.
var fieldAliases = map[string]string{
	"path":        FieldPathTokens,
	"content":     FieldBody,
	"body":        FieldBody,
	"name":        FieldChunkName,
	"chunk_name":  FieldChunkName,
	"declaration": FieldDeclaration,
}

// Term is one parsed query atom: a bare word, a field-scoped word, a
// phrase, or a wildcard prefix, with an optional boost and negation.
type Term struct {
	Text       string
	Field      string // "" means the default weighted disjunction across all tokenized fields
	Boost      float64
	Negate     bool
	Phrase     bool
	ProximityN int // -1 when not a proximity phrase
	Wildcard   bool
}

// AndGroup is a set of terms implicitly ANDed together.
type AndGroup struct {
	Terms []Term
}

// Query is an OR of AndGroups, the shape spec.md §4.5's "Boolean operators
// AND, OR, NOT ... are honored" naturally decomposes into.
type Query struct {
	Groups []AndGroup
	Raw    string
}

// ParseQuery parses raw query text into a Query, or a QueryInvalid error
// carrying a human-readable position (spec.md §7).
func ParseQuery(raw string) (*Query, error) {
	toks, err := lexQuery(raw)
	if err != nil {
		return nil, err
	}

	q := &Query{Raw: raw}
	var group AndGroup
	negateNext := false

	flush := func() {
		if len(group.Terms) > 0 {
			q.Groups = append(q.Groups, group)
		}
		group = AndGroup{}
	}

	for _, tok := range toks {
		switch {
		case tok.op == "OR":
			flush()
		case tok.op == "AND":
			// implicit; nothing to do
		case tok.op == "NOT":
			negateNext = true
			continue
		default:
			term, err := parseTermToken(tok.text, tok.pos)
			if err != nil {
				return nil, err
			}
			term.Negate = term.Negate || negateNext
			group.Terms = append(group.Terms, term)
		}
		negateNext = false
	}
	flush()

	if len(q.Groups) == 0 {
		return nil, probeerrors.NewQueryInvalid(0, fmt.Errorf("empty query"))
	}
	return q, nil
}

type lexToken struct {
	text string
	op   string // "AND", "OR", "NOT", or "" for a term
	pos  int
}

func lexQuery(raw string) ([]lexToken, error) {
	var toks []lexToken
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		for i < len(runes) && isQuerySpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			break
		}
		start := i

		if runes[i] == '"' {
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j >= len(runes) {
				return nil, probeerrors.NewQueryInvalid(start, fmt.Errorf("unterminated phrase"))
			}
			j++ // consume closing quote
			// optional ~N proximity suffix
			for j < len(runes) && !isQuerySpace(runes[j]) {
				j++
			}
			toks = append(toks, lexToken{text: string(runes[start:j]), pos: start})
			i = j
			continue
		}

		for i < len(runes) && !isQuerySpace(runes[i]) {
			i++
		}
		word := string(runes[start:i])
		switch word {
		case "AND", "OR", "NOT":
			toks = append(toks, lexToken{op: word, pos: start})
		default:
			toks = append(toks, lexToken{text: word, pos: start})
		}
	}
	return toks, nil
}

func isQuerySpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func parseTermToken(raw string, pos int) (Term, error) {
	t := Term{Boost: 1.0, ProximityN: -1}

	if strings.HasPrefix(raw, "-") && len(raw) > 1 {
		t.Negate = true
		raw = raw[1:]
	}

	if strings.HasPrefix(raw, `"`) {
		end := strings.LastIndex(raw, `"`)
		if end <= 0 {
			return t, probeerrors.NewQueryInvalid(pos, fmt.Errorf("malformed phrase %q", raw))
		}
		t.Phrase = true
		t.Text = raw[1:end]
		rest := raw[end+1:]
		if strings.HasPrefix(rest, "~") {
			n, err := strconv.Atoi(rest[1:])
			if err != nil {
				return t, probeerrors.NewQueryInvalid(pos, fmt.Errorf("bad proximity %q: %w", rest, err))
			}
			t.ProximityN = n
		}
		return t, nil
	}

	if caret := strings.LastIndex(raw, "^"); caret > 0 {
		if boost, err := strconv.ParseFloat(raw[caret+1:], 64); err == nil {
			t.Boost = boost
			raw = raw[:caret]
		}
	}

	if colon := strings.Index(raw, ":"); colon > 0 {
		prefix := raw[:colon]
		if field, ok := fieldAliases[prefix]; ok {
			t.Field = field
			raw = raw[colon+1:]
		}
	}

	if strings.Contains(raw, "*") {
		t.Wildcard = true
		raw = strings.TrimSuffix(raw, "*")
	}

	if raw == "" {
		return t, probeerrors.NewQueryInvalid(pos, fmt.Errorf("empty term"))
	}
	t.Text = raw
	return t, nil
}
