package shaderedit

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

const DefaultDirectiveKeyword = "ShaderChunk"

// named source fragments that `<keyword>(<name>)` directives expand to
type ChunkRegistry interface {
	Chunk(name string) (string, bool)
}

type MapChunkRegistry map[string]string

func (self MapChunkRegistry) Chunk(name string) (string, bool) {
	chunk, ok := self[name]
	return chunk, ok
}

func (self MapChunkRegistry) Names() []string {
	names := maps.Keys(self)
	slices.Sort(names)
	return names
}

type directiveTokenKind int

const (
	directiveTokenText directiveTokenKind = iota
	directiveTokenInclude
)

type directiveToken struct {
	kind directiveTokenKind
	// the exact source text of the token
	text string
	// for include tokens, the chunk name with surrounding space trimmed
	name string
}

// splits `source` into text runs and `<keyword>(<identifier>)` directives.
// concatenating the `text` of every token reproduces `source`.
func tokenizeDirectives(keyword string, source string) []directiveToken {
	tokens := []directiveToken{}
	if keyword == "" {
		return append(tokens, directiveToken{kind: directiveTokenText, text: source})
	}

	opener := keyword + "("
	textStart := 0
	for i := 0; i < len(source); {
		j := strings.Index(source[i:], opener)
		if j < 0 {
			break
		}
		start := i + j
		if 0 < start && isIdentifierByte(source[start-1]) {
			// part of a longer identifier
			i = start + len(opener)
			continue
		}
		argStart := start + len(opener)
		k := strings.IndexByte(source[argStart:], ')')
		if k < 0 {
			break
		}
		end := argStart + k + 1
		name := strings.TrimSpace(source[argStart : end-1])
		if !isIdentifier(name) {
			i = argStart
			continue
		}
		if textStart < start {
			tokens = append(tokens, directiveToken{kind: directiveTokenText, text: source[textStart:start]})
		}
		tokens = append(tokens, directiveToken{
			kind: directiveTokenInclude,
			text: source[start:end],
			name: name,
		})
		textStart = end
		i = end
	}
	if textStart < len(source) {
		tokens = append(tokens, directiveToken{kind: directiveTokenText, text: source[textStart:]})
	}
	return tokens
}

// replaces each directive with its registry chunk, left to right.
// chunk text is inserted verbatim and is not scanned for further directives.
// directives naming an unknown chunk are left in place.
func ExpandDirectives(keyword string, source string, registry ChunkRegistry) string {
	var b strings.Builder
	for _, token := range tokenizeDirectives(keyword, source) {
		switch token.kind {
		case directiveTokenInclude:
			if registry != nil {
				if chunk, ok := registry.Chunk(token.name); ok {
					b.WriteString(chunk)
					continue
				}
			}
			b.WriteString(token.text)
		default:
			b.WriteString(token.text)
		}
	}
	return b.String()
}

func isIdentifierByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || ('0' <= s[0] && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i += 1 {
		if !isIdentifierByte(s[i]) {
			return false
		}
	}
	return true
}
