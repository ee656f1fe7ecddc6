// Command sqllint checks that every SQL constant opens with a unique
// `--sql <uuid>` marker line, the form infra.SQLRunner requires at runtime.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	statementPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create|alter|drop)\b`)
	markerPattern    = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

type violation struct {
	pos     token.Position
	name    string
	message string
}

func (v violation) String() string {
	return fmt.Sprintf("%s:%d %s (%s)", v.pos.Filename, v.pos.Line, v.message, v.name)
}

// linter accumulates markers across files so duplicates are caught tree-wide.
type linter struct {
	fset       *token.FileSet
	seen       map[string]token.Position
	violations []violation
}

func newLinter() *linter {
	return &linter{fset: token.NewFileSet(), seen: map[string]token.Position{}}
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	l := newLinter()
	for _, target := range targets {
		if err := l.walk(target); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}
	if report(os.Stderr, l.violations) {
		os.Exit(1)
	}
}

func report(w io.Writer, violations []violation) bool {
	if len(violations) == 0 {
		return false
	}
	fmt.Fprintln(w, "sqllint: SQL audit marker problems")
	for _, v := range violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
	return true
}

func (l *linter) walk(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil
		}
		return l.lintFile(target, nil)
	}
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		return l.lintFile(path, nil)
	})
}

// lintFile parses path, or src when it is non-nil, and records violations.
func (l *linter) lintFile(path string, src any) error {
	file, err := parser.ParseFile(l.fset, path, src, 0)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING || i >= len(spec.Names) {
				continue
			}
			l.check(spec.Names[i].Name, lit)
		}
		return true
	})
	return nil
}

func (l *linter) check(name string, lit *ast.BasicLit) {
	raw, err := unquote(lit.Value)
	if err != nil || !statementPattern.MatchString(raw) {
		return
	}
	pos := l.fset.Position(lit.Pos())
	m := markerPattern.FindStringSubmatch(firstLine(raw))
	if m == nil {
		l.violations = append(l.violations, violation{pos: pos, name: name, message: "missing or invalid --sql <uuid> marker"})
		return
	}
	if prev, dup := l.seen[m[1]]; dup {
		l.violations = append(l.violations, violation{
			pos:     pos,
			name:    name,
			message: fmt.Sprintf("marker %s already used at %s:%d", m[1], prev.Filename, prev.Line),
		})
		return
	}
	l.seen[m[1]] = pos
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) >= 2 && v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}
