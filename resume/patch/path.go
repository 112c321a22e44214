package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is one step of a parsed path: either an object key or an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// parsePath parses dotted/indexed paths such as "experience[0].achievements[2]".
func parsePath(path string) ([]segment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	var segs []segment
	i := 0
	expectKey := true
	for i < len(path) {
		switch c := path[i]; {
		case c == '.':
			if expectKey {
				return nil, fmt.Errorf("%w: %q has an empty key at offset %d", ErrInvalidPath, path, i)
			}
			expectKey = true
			i++
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: %q has an unterminated index", ErrInvalidPath, path)
			}
			raw := path[i+1 : i+end]
			idx, err := strconv.Atoi(raw)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: %q has a bad index %q", ErrInvalidPath, path, raw)
			}
			if len(segs) == 0 {
				return nil, fmt.Errorf("%w: %q starts with an index", ErrInvalidPath, path)
			}
			segs = append(segs, segment{index: idx, isIndex: true})
			expectKey = false
			i += end + 1
		default:
			if !expectKey {
				return nil, fmt.Errorf("%w: %q is missing a separator at offset %d", ErrInvalidPath, path, i)
			}
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' {
				if !isKeyChar(path[i]) {
					return nil, fmt.Errorf("%w: %q has an invalid character %q", ErrInvalidPath, path, path[i])
				}
				i++
			}
			segs = append(segs, segment{key: path[start:i]})
			expectKey = false
		}
	}
	if expectKey {
		return nil, fmt.Errorf("%w: %q ends with a separator", ErrInvalidPath, path)
	}
	return segs, nil
}

func isKeyChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func joinPath(segs []segment) string {
	var b strings.Builder
	for i, s := range segs {
		if !s.isIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}
