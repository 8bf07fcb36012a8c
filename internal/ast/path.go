package ast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
)

// PathSeparator separates segments in the flat path encoding used for
// computed column names and legacy criteria keys.
const PathSeparator = "__"

// plainKey matches keys that need no quoting in a JSON path.
var plainKey = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Segment is one step into a structured value: a key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path addresses a value nested inside a structured field.
type Path []Segment

// Keys builds a path of key segments.
func Keys(keys ...string) Path {
	p := make(Path, len(keys))
	for i, k := range keys {
		p[i] = Key(k)
	}
	return p
}

// Pointer serializes the path for SQLite's JSON functions.
//
//	Path{Key("a"), Index(0), Key("1")}.Pointer() == `$.a[0]."1"`
func (p Path) Pointer() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		switch {
		case s.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		case plainKey.MatchString(s.Key):
			b.WriteByte('.')
			b.WriteString(s.Key)
		default:
			b.WriteString(`."`)
			b.WriteString(strings.ReplaceAll(s.Key, `"`, `\"`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// Name serializes the path in the flat encoding. Indexes are digits. Keys
// made only of digits, or starting with an underscore, are prefixed with
// an underscore.
//
//	Path{Key("a"), Index(0), Key("1")}.Name() == "a__0___1"
//	Keys("a", "_id").Name() == "a____id"
func (p Path) Name() string {
	parts := make([]string, len(p))
	for i, s := range p {
		switch {
		case s.IsIndex:
			parts[i] = strconv.Itoa(s.Index)
		case isDigits(s.Key), strings.HasPrefix(s.Key, "_"):
			parts[i] = "_" + s.Key
		default:
			parts[i] = s.Key
		}
	}
	return strings.Join(parts, PathSeparator)
}

// String implements fmt.Stringer.
func (p Path) String() string { return p.Pointer() }

// Equal reports whether two paths address the same value.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ParsePath parses the flat encoding produced by Name.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, PathSeparator)
	p := make(Path, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		switch {
		case part == "" && i+1 < len(parts):
			// An escaped key with a leading underscore splits as "", rest.
			i++
			p = append(p, Key("_"+parts[i]))
		case part == "":
			return nil, alerr.Newf(alerr.ErrInvalidPath, "empty segment in path %q", s)
		case isDigits(part):
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, alerr.Wrapf(alerr.ErrInvalidPath, err, "invalid index in path %q", s)
			}
			p = append(p, Index(n))
		case part[0] == '_' && isDigits(part[1:]):
			p = append(p, Key(part[1:]))
		default:
			p = append(p, Key(part))
		}
	}
	return p, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
