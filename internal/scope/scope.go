// Package scope classifies the JavaScript token under a cursor and answers
// whether a name is declared in a lexical scope enclosing it.
package scope

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"deflens/internal/resolver"
)

const (
	nodeProgram      = "program"
	nodeBlock        = "statement_block"
	nodeIdentifier   = "identifier"
	nodeProperty     = "property_identifier"
	nodeShorthand    = "shorthand_property_identifier"
	nodeShorthandPat = "shorthand_property_identifier_pattern"
	nodeMember       = "member_expression"
	nodeCall         = "call_expression"
	nodeNew          = "new_expression"
)

var functionNodes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function":                       true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var blockNodes = map[string]bool{
	nodeProgram:          true,
	nodeBlock:            true,
	"for_statement":      true,
	"for_in_statement":   true,
	"switch_body":        true,
	"class_static_block": true,
}

// Analyzer parses JavaScript sources. It is safe for concurrent use; every
// Parse call uses its own parser.
type Analyzer struct {
	lang *sitter.Language
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{lang: javascript.GetLanguage()}
}

// Parse builds the syntax tree of src and records every declaration with
// the byte range of the scope it is visible in.
func (a *Analyzer) Parse(ctx context.Context, src []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(a.lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	f := &File{src: src, tree: tree, root: tree.RootNode()}
	f.collect(f.root)
	return f, nil
}

type binding struct {
	name       string
	start, end uint32
}

// File is one parsed source.
type File struct {
	src      []byte
	tree     *sitter.Tree
	root     *sitter.Node
	bindings []binding
}

// Close releases the syntax tree.
func (f *File) Close() {
	f.tree.Close()
}

// HasErrors reports whether the source contained syntax errors.
func (f *File) HasErrors() bool {
	return f.root.HasError()
}

// Declared lists every declared name, in source order, duplicates included.
func (f *File) Declared() []string {
	out := make([]string, len(f.bindings))
	for i, b := range f.bindings {
		out[i] = b.name
	}
	return out
}

// IsBound reports whether name is declared in a scope enclosing offset.
// Declarations are hoisted to the start of their scope.
func (f *File) IsBound(name string, offset int) bool {
	off := uint32(offset)
	for _, b := range f.bindings {
		if b.name == name && b.start <= off && off <= b.end {
			return true
		}
	}
	return false
}

// Scope returns the lexical scope at offset.
func (f *File) Scope(offset int) resolver.Scope {
	return resolver.ScopeFunc(func(name string) bool {
		return f.IsBound(name, offset)
	})
}

func (f *File) text(n *sitter.Node) string {
	return n.Content(f.src)
}

func (f *File) bind(name string, scope *sitter.Node) {
	if name == "" || scope == nil {
		return
	}
	f.bindings = append(f.bindings, binding{name: name, start: scope.StartByte(), end: scope.EndByte()})
}

func (f *File) collect(n *sitter.Node) {
	switch typ := n.Type(); {
	case typ == "variable_declarator":
		scope := enclosing(n, blockNodes)
		if p := n.Parent(); p != nil && p.Type() == "variable_declaration" {
			scope = enclosing(n, functionScope)
		}
		f.bindPattern(n.ChildByFieldName("name"), scope)

	case typ == "function_declaration" || typ == "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			f.bind(f.text(name), enclosing(n, blockNodes))
		}
		f.bindParams(n)

	case functionNodes[typ]:
		if typ != "method_definition" {
			if name := n.ChildByFieldName("name"); name != nil {
				f.bind(f.text(name), n)
			}
		}
		f.bindParams(n)

	case typ == "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			f.bind(f.text(name), enclosing(n, blockNodes))
		}

	case typ == "class":
		if name := n.ChildByFieldName("name"); name != nil {
			f.bind(f.text(name), n)
		}

	case typ == "catch_clause":
		f.bindPattern(n.ChildByFieldName("parameter"), n)

	case typ == "for_in_statement":
		if kind := declarationKind(n); kind != "" {
			scope := n
			if kind == "var" {
				scope = enclosing(n, functionScope)
			}
			f.bindPattern(n.ChildByFieldName("left"), scope)
		}

	case typ == "import_clause":
		f.bindImports(n)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		f.collect(n.NamedChild(i))
	}
}

func (f *File) bindParams(fn *sitter.Node) {
	if p := fn.ChildByFieldName("parameter"); p != nil {
		f.bindPattern(p, fn)
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			f.bindPattern(params.NamedChild(i), fn)
		}
	}
}

// bindPattern declares every identifier a binding pattern introduces.
func (f *File) bindPattern(p *sitter.Node, scope *sitter.Node) {
	if p == nil {
		return
	}
	switch p.Type() {
	case nodeIdentifier, nodeShorthandPat:
		f.bind(f.text(p), scope)
	case "assignment_pattern", "object_assignment_pattern":
		f.bindPattern(p.ChildByFieldName("left"), scope)
	case "pair_pattern":
		f.bindPattern(p.ChildByFieldName("value"), scope)
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := 0; i < int(p.NamedChildCount()); i++ {
			f.bindPattern(p.NamedChild(i), scope)
		}
	}
}

func (f *File) bindImports(clause *sitter.Node) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case nodeIdentifier:
			f.bind(f.text(child), f.root)
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == nodeIdentifier {
					f.bind(f.text(gc), f.root)
				}
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}
				if local != nil {
					f.bind(f.text(local), f.root)
				}
			}
		}
	}
}

// declarationKind returns the var, let or const keyword of a for-in/of
// header, or "" when the loop assigns to an existing target.
func declarationKind(loop *sitter.Node) string {
	for i := 0; i < int(loop.ChildCount()); i++ {
		switch c := loop.Child(i); c.Type() {
		case "var", "let", "const":
			return c.Type()
		case "(":
			continue
		default:
			if c.IsNamed() {
				return ""
			}
		}
	}
	return ""
}

var functionScope = func() map[string]bool {
	m := map[string]bool{nodeProgram: true}
	for k := range functionNodes {
		m[k] = true
	}
	return m
}()

// enclosing returns the nearest strict ancestor of n whose type is in kinds.
func enclosing(n *sitter.Node, kinds map[string]bool) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if kinds[p.Type()] {
			return p
		}
	}
	return nil
}
