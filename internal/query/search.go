package query

import (
	"context"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/sqlgen"
)

// DefaultChunk bounds how many parent ids one search resolves.
const DefaultChunk = 100

// LabelRef names a field searched by free text. Paths narrow a structured
// field to sub-paths; when empty the field's declared label paths apply.
type LabelRef struct {
	Field string
	Paths []ast.Path
}

// ParentRef points a child field at the parent model whose field it holds.
type ParentRef struct {
	Model *Model
	Field string
}

// Model is a table plus what search needs to know about it.
type Model struct {
	Table   *ast.TableDef
	ID      string
	Label   []LabelRef
	Parents map[string]ParentRef
}

// IDField returns the identifying field: ID when set, else the primary key.
func (m *Model) IDField() *ast.FieldDef {
	if m.ID != "" {
		return m.Table.Field(m.ID)
	}
	return m.Table.PrimaryKey()
}

// ParentResolver fetches the values of a parent field for rows matching
// a compiled search, at most limit of them.
type ParentResolver interface {
	ResolveIDs(ctx context.Context, parent *Model, field string, where ast.Statement, limit int) ([]any, error)
}

// Searcher compiles free-text search over a model's label fields.
type Searcher struct {
	resolver ParentResolver
}

// NewSearcher creates a searcher. A nil resolver skips relation fields.
func NewSearcher(resolver ParentResolver) *Searcher {
	return &Searcher{resolver: resolver}
}

// Compile returns the OR-group matching term against every label field
// and whether the result may be incomplete. Relation fields match the ids
// of up to chunk parents whose own labels match, one hop deep. An empty
// statement means no condition applies.
func (s *Searcher) Compile(ctx context.Context, model *Model, term string, chunk int) (ast.Statement, bool, error) {
	if chunk <= 0 {
		chunk = DefaultChunk
	}
	return s.compile(ctx, model, term, chunk, 1)
}

func (s *Searcher) compile(ctx context.Context, model *Model, term string, chunk, depth int) (ast.Statement, bool, error) {
	var ors []string
	var args []any
	overflow := false

	for _, label := range model.Label {
		field := model.Table.Field(label.Field)
		if field == nil {
			return ast.Statement{}, false, alerr.NewUnknownFieldError("search", model.Table.Table(), label.Field, model.Table.FieldNames())
		}

		if parent, ok := model.Parents[label.Field]; ok {
			if depth <= 0 || s.resolver == nil {
				continue
			}
			where, parentOverflow, err := s.compile(ctx, parent.Model, term, chunk, depth-1)
			if err != nil {
				return ast.Statement{}, false, err
			}
			ids, err := s.resolver.ResolveIDs(ctx, parent.Model, parent.Field, where, chunk)
			if err != nil {
				return ast.Statement{}, false, err
			}
			overflow = overflow || parentOverflow || len(ids) >= chunk
			if len(ids) == 0 {
				continue
			}
			frag, err := CompilePredicate(field, ast.Where(field.Name, ast.OpIn, ids))
			if err != nil {
				return ast.Statement{}, false, err
			}
			ors = append(ors, frag.SQL)
			args = append(args, frag.Args...)
			continue
		}

		if field.Kind == ast.KindStructured {
			paths := label.Paths
			if len(paths) == 0 {
				paths = field.LabelPaths()
			}
			for _, path := range paths {
				frag, err := CompilePredicate(field, ast.Where(field.Name, ast.OpLike, term).At(path))
				if err != nil {
					return ast.Statement{}, false, err
				}
				ors = append(ors, frag.SQL)
				args = append(args, frag.Args...)
			}
			continue
		}

		frag, err := CompilePredicate(field, ast.Where(field.Name, ast.OpLike, term))
		if err != nil {
			return ast.Statement{}, false, err
		}
		ors = append(ors, frag.SQL)
		args = append(args, frag.Args...)
	}

	if len(ors) == 0 {
		return ast.Statement{}, overflow, nil
	}
	return ast.Stmt("("+strings.Join(ors, " OR ")+")", args...), overflow, nil
}

// ----------------------------------------------------------------------------
// Sort / limit
// ----------------------------------------------------------------------------

// CompileSort compiles sort keys into ORDER BY expressions. A key is a
// field name prefixed with + (ascending, the default) or - (descending).
func CompileSort(table *ast.TableDef, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		name, desc := key, false
		switch {
		case strings.HasPrefix(key, "-"):
			name, desc = key[1:], true
		case strings.HasPrefix(key, "+"):
			name = key[1:]
		}
		col, ok := table.ColumnFor(name)
		if !ok {
			return nil, alerr.NewUnknownFieldError("sort by", table.Table(), name, table.FieldNames())
		}
		expr := sqlgen.QuoteIdent(col)
		if desc {
			expr += " DESC"
		}
		out = append(out, expr)
	}
	return out, nil
}

// CompileLimit compiles a LIMIT clause body. A limit of zero or less
// means no limit and yields an empty statement.
func CompileLimit(limit, offset int) ast.Statement {
	if limit <= 0 {
		return ast.Statement{}
	}
	if offset > 0 {
		return ast.Stmt("? OFFSET ?", limit, offset)
	}
	return ast.Stmt("?", limit)
}
