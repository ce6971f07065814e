package reactive

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParsePath compiles a dotted watch expression like "a.b.0.c" into a getter
// reading from root. Numeric segments index into Arrays.
func ParsePath(path string) (func(root any) any, error) {
	if path == "" {
		return nil, fmt.Errorf("%q: %w", path, ErrInvalidPath)
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%q: %w", path, ErrInvalidPath)
		}
		for _, r := range seg {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
				return nil, fmt.Errorf("%q: %w", path, ErrInvalidPath)
			}
		}
	}

	return func(root any) any {
		cur := root
		for _, seg := range segments {
			switch v := cur.(type) {
			case *Object:
				if v == nil {
					return nil
				}
				cur = v.Get(seg)
			case *Array:
				i, err := strconv.Atoi(seg)
				if err != nil || v == nil {
					return nil
				}
				cur = v.At(i)
			default:
				return nil
			}
		}
		return cur
	}, nil
}
