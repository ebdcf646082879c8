package formpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is a single step in a structural path: either a property key or a
// zero-based array index.
type Token struct {
	key     string
	index   int
	isIndex bool
}

// Key constructs a property-key token.
func Key(name string) Token {
	return Token{key: name}
}

// Index constructs an array-index token.
func Index(i int) Token {
	return Token{index: i, isIndex: true}
}

// IsIndex reports whether the token addresses an array slot.
func (t Token) IsIndex() bool { return t.isIndex }

// Key returns the property name for key tokens, "" otherwise.
func (t Token) Key() string { return t.key }

// Index returns the array index for index tokens, -1 otherwise.
func (t Token) Index() int {
	if !t.isIndex {
		return -1
	}
	return t.index
}

// Path is an ordered token sequence identifying a location in the schema and
// data trees. Paths are value types; Child/Item return copies so derived paths
// never alias their parent's backing array.
type Path []Token

// New constructs a path from tokens.
func New(tokens ...Token) Path {
	return append(Path(nil), tokens...)
}

// Root returns the empty path.
func Root() Path { return Path{} }

// IsRoot reports whether the path has no tokens.
func (p Path) IsRoot() bool { return len(p) == 0 }

// Child returns a copy of p extended with a property key.
func (p Path) Child(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = Key(name)
	return out
}

// Item returns a copy of p extended with an array index.
func (p Path) Item(index int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = Index(index)
	return out
}

// Parent returns the path with its last token removed.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return New(p[:len(p)-1]...)
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// String serializes the path as a dotted property path with bracketed
// zero-based indices, e.g. "pricing.tiers[2].amount". Parse inverts it for
// every path the engine produces.
func (p Path) String() string {
	var out strings.Builder
	for _, token := range p {
		if token.isIndex {
			out.WriteString("[")
			out.WriteString(strconv.Itoa(token.index))
			out.WriteString("]")
			continue
		}
		if out.Len() > 0 {
			out.WriteString(".")
		}
		out.WriteString(token.key)
	}
	return out.String()
}

// Parse deserializes a dotted/bracketed path string.
func Parse(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Path{}, nil
	}

	var path Path
	for _, segment := range strings.Split(trimmed, ".") {
		if segment == "" {
			return nil, fmt.Errorf("formpath: empty segment in %q", raw)
		}
		key := segment
		var brackets string
		if idx := strings.Index(segment, "["); idx >= 0 {
			key = segment[:idx]
			brackets = segment[idx:]
		}
		if key != "" {
			path = append(path, Key(key))
		} else if brackets == "" || len(path) == 0 {
			return nil, fmt.Errorf("formpath: bare index segment in %q", raw)
		}
		for brackets != "" {
			if !strings.HasPrefix(brackets, "[") {
				return nil, fmt.Errorf("formpath: malformed index in %q", raw)
			}
			end := strings.Index(brackets, "]")
			if end < 0 {
				return nil, fmt.Errorf("formpath: unterminated index in %q", raw)
			}
			index, err := strconv.Atoi(brackets[1:end])
			if err != nil || index < 0 {
				return nil, fmt.Errorf("formpath: invalid index %q in %q", brackets[1:end], raw)
			}
			path = append(path, Index(index))
			brackets = brackets[end+1:]
		}
	}
	return path, nil
}

// MustParse panics on malformed input. Useful for tests and fixtures.
func MustParse(raw string) Path {
	path, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return path
}
