// Package sdfpath implements absolute hierarchical prim paths.
//
// A Path is an immutable value such as "/World/Chair/Leg". The absolute root
// is "/" and the zero value is the empty path. Paths compare element by
// element, so every path sorts directly before its descendants and a subtree
// always forms one contiguous run in an ordered container:
//
//	/A < /A/B < /A/B/C < /A/C < /AB
package sdfpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is wrapped by every Parse failure.
var ErrInvalidPath = errors.New("invalid path")

// Path is an absolute prim path. The zero value is the empty path.
type Path struct {
	s string
}

var absoluteRoot = Path{s: "/"}

// AbsoluteRoot returns "/".
func AbsoluteRoot() Path { return absoluteRoot }

// Parse validates s and returns the corresponding path. The empty string
// parses to the empty path.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if s == "/" {
		return absoluteRoot, nil
	}
	if s[0] != '/' {
		return Path{}, fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, s)
	}
	for _, elem := range strings.Split(s[1:], "/") {
		if !isIdentifier(elem) {
			return Path{}, fmt.Errorf("%w: %q has bad element %q", ErrInvalidPath, s, elem)
		}
	}
	return Path{s: s}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (p Path) String() string { return p.s }

func (p Path) IsEmpty() bool { return p.s == "" }

func (p Path) IsAbsoluteRoot() bool { return p.s == "/" }

// Parent returns the parent path. The parent of "/" and of the empty path is
// the empty path.
func (p Path) Parent() Path {
	switch p.s {
	case "", "/":
		return Path{}
	}
	i := strings.LastIndexByte(p.s, '/')
	if i == 0 {
		return absoluteRoot
	}
	return Path{s: p.s[:i]}
}

// Name returns the last element, or "" for the root and empty paths.
func (p Path) Name() string {
	if len(p.s) <= 1 {
		return ""
	}
	return p.s[strings.LastIndexByte(p.s, '/')+1:]
}

// Elements returns the names along the path from the root.
func (p Path) Elements() []string {
	if len(p.s) <= 1 {
		return nil
	}
	return strings.Split(p.s[1:], "/")
}

// Depth is the number of elements; "/" has depth 0.
func (p Path) Depth() int {
	if len(p.s) <= 1 {
		return 0
	}
	return strings.Count(p.s, "/")
}

// AppendChild returns p/name. It panics when name is not an identifier or p
// is empty.
func (p Path) AppendChild(name string) Path {
	if p.IsEmpty() || !isIdentifier(name) {
		panic(fmt.Sprintf("sdfpath: cannot append %q to %q", name, p.s))
	}
	if p.IsAbsoluteRoot() {
		return Path{s: "/" + name}
	}
	return Path{s: p.s + "/" + name}
}

// HasPrefix reports whether prefix is p or one of its ancestors. The empty
// path is nobody's prefix.
func (p Path) HasPrefix(prefix Path) bool {
	switch {
	case prefix.IsEmpty() || p.IsEmpty():
		return false
	case prefix.IsAbsoluteRoot():
		return true
	case !strings.HasPrefix(p.s, prefix.s):
		return false
	}
	return len(p.s) == len(prefix.s) || p.s[len(prefix.s)] == '/'
}

// ReplacePrefix swaps oldPrefix for newPrefix. Paths not under oldPrefix are
// returned unchanged.
func (p Path) ReplacePrefix(oldPrefix, newPrefix Path) Path {
	if !p.HasPrefix(oldPrefix) || newPrefix.IsEmpty() {
		return p
	}
	suffix := p.s[len(oldPrefix.s):]
	if oldPrefix.IsAbsoluteRoot() {
		suffix = p.s
		if p.IsAbsoluteRoot() {
			suffix = ""
		}
	}
	if suffix == "" {
		return newPrefix
	}
	if newPrefix.IsAbsoluteRoot() {
		return Path{s: suffix}
	}
	return Path{s: newPrefix.s + suffix}
}

// Compare orders paths element-wise: -1 if p sorts first, 0 if equal, +1
// otherwise. The empty path sorts before everything.
func (p Path) Compare(other Path) int {
	if p.s == other.s {
		return 0
	}
	a, b := p.s, other.s
	for {
		switch {
		case a == "":
			return -1
		case b == "":
			return 1
		}
		ea, ra := nextElement(a)
		eb, rb := nextElement(b)
		if ea != eb {
			if ea < eb {
				return -1
			}
			return 1
		}
		a, b = ra, rb
	}
}

// nextElement splits "/x/rest" into "x" and "/rest"; "/" yields "" and "".
func nextElement(s string) (string, string) {
	s = s[1:]
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// Less is Compare(other) < 0, convenient for sort and btree comparators.
func (p Path) Less(other Path) bool { return p.Compare(other) < 0 }

func (p Path) MarshalText() ([]byte, error) { return []byte(p.s), nil }

func (p *Path) UnmarshalText(d []byte) error {
	parsed, err := Parse(string(d))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
