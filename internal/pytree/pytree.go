// Package pytree is the tree provider: it parses Python source into ordered
// class-body element records using tree-sitter, and serializes a reordered
// body back into source text.
//
// Elements are opaque spans of the original file. Reordering moves spans;
// it never reformats them, so comments, decorators and intra-element layout
// survive byte-for-byte. The gaps between elements (newlines, blank lines)
// stay in their original slots.
package pytree

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/csort/internal/model"
)

// docstringName is the element name assigned to class docstrings.
const docstringName = "docstring"

var whitespaceRe = regexp.MustCompile(`\s+`)

// File is one parsed Python source file.
type File struct {
	Source  []byte
	Classes []*Class // module-level classes, in source order
}

// Class is one class definition with its ordered body elements.
// Nested classes appear both as an element of their parent and as that
// element's Inner class.
type Class struct {
	Name     string
	Elements []*Element

	bodyStart int
	bodyEnd   int
	order     []int // permutation applied on render; nil means identity
}

// Element is one class-body statement with its extracted record and the
// source span it owns (decorators and attached comments included).
type Element struct {
	Record model.ElementRecord
	Inner  *Class // non-nil for nested class definitions

	start, end int
	endRow     int

	// static-rewrite bookkeeping, meaningful for functions taking self
	defOff     int
	selfStart  int
	selfEnd    int
	makeStatic bool
}

// Parse parses source and extracts every module-level class. All node data
// is copied out before the tree-sitter tree is released.
func Parse(source []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing python source: %w", err)
	}
	defer tree.Close()

	f := &File{Source: source}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		def := child
		if child.Type() == "decorated_definition" {
			if d := child.ChildByFieldName("definition"); d != nil {
				def = d
			}
		}
		if def.Type() == "class_definition" {
			if cls := newClass(def, source); cls != nil {
				f.Classes = append(f.Classes, cls)
			}
		}
	}
	return f, nil
}

// Records returns a copy of the element records in source order.
func (c *Class) Records() []model.ElementRecord {
	records := make([]model.ElementRecord, len(c.Elements))
	for i, el := range c.Elements {
		records[i] = el.Record
	}
	return records
}

// SetOrder installs the permutation to apply on render. perm[slot] is the
// original index of the element to place in that slot.
func (c *Class) SetOrder(perm []int) error {
	if len(perm) != len(c.Elements) {
		return fmt.Errorf("permutation has %d entries for %d elements", len(perm), len(c.Elements))
	}
	seen := make([]bool, len(c.Elements))
	for _, idx := range perm {
		if idx < 0 || idx >= len(c.Elements) || seen[idx] {
			return fmt.Errorf("invalid permutation entry %d", idx)
		}
		seen[idx] = true
	}
	c.order = perm
	return nil
}

// MarkStatic flags an element for rewrite to a static method on render:
// an @staticmethod decorator is inserted and the self parameter dropped.
func (c *Class) MarkStatic(i int) {
	if i < 0 || i >= len(c.Elements) {
		return
	}
	c.Elements[i].makeStatic = true
}

func newClass(def *sitter.Node, source []byte) *Class {
	c := &Class{}
	if n := def.ChildByFieldName("name"); n != nil {
		c.Name = nodeText(n, source)
	}
	body := def.ChildByFieldName("body")
	if body == nil {
		return c
	}
	c.bodyStart = int(body.StartByte())
	c.bodyEnd = int(body.EndByte())

	pending := -1 // start of the earliest unattached leading comment
	index := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			// A comment on the same line as the previous element trails it;
			// standalone comments lead the next element.
			if n := len(c.Elements); n > 0 && pending < 0 && int(stmt.StartPoint().Row) == c.Elements[n-1].endRow {
				c.Elements[n-1].end = int(stmt.EndByte())
				c.Elements[n-1].endRow = int(stmt.EndPoint().Row)
				continue
			}
			if pending < 0 {
				pending = int(stmt.StartByte())
			}
			continue
		}

		el := newElement(stmt, source, index)
		if pending >= 0 {
			el.start = pending
			pending = -1
		}
		c.Elements = append(c.Elements, el)
		index++
	}
	return c
}

func newElement(stmt *sitter.Node, source []byte, index int) *Element {
	el := &Element{
		start:  int(stmt.StartByte()),
		end:    int(stmt.EndByte()),
		endRow: int(stmt.EndPoint().Row),
	}
	el.Record.OriginalIndex = index

	def := stmt
	if stmt.Type() == "decorated_definition" {
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			child := stmt.NamedChild(i)
			if child.Type() == "decorator" {
				el.Record.Decorators = append(el.Record.Decorators, decoratorInfo(child, source))
			}
		}
		if d := stmt.ChildByFieldName("definition"); d != nil {
			def = d
		}
	}

	switch def.Type() {
	case "function_definition":
		extractFunction(el, def, source)
	case "class_definition":
		el.Record.Kind = model.KindClass
		if n := def.ChildByFieldName("name"); n != nil {
			el.Record.Name = nodeText(n, source)
		}
		el.Inner = newClass(def, source)
	case "expression_statement":
		extractExpression(el, def, source, index)
	default:
		el.Record.Kind = model.KindExpression
		el.Record.Name = collapseWhitespace(nodeText(def, source))
	}
	return el
}

func extractFunction(el *Element, def *sitter.Node, source []byte) {
	el.Record.Kind = model.KindFunction
	el.defOff = int(def.StartByte())
	if n := def.ChildByFieldName("name"); n != nil {
		el.Record.Name = nodeText(n, source)
	}

	params := def.ChildByFieldName("parameters")
	el.Record.Parameters = paramNames(params, source)

	if params != nil && len(el.Record.Parameters) > 0 && el.Record.Parameters[0] == "self" {
		first := params.NamedChild(0)
		el.selfStart = int(first.StartByte())
		if params.NamedChildCount() > 1 {
			el.selfEnd = int(params.NamedChild(1).StartByte())
		} else {
			el.selfEnd = int(first.EndByte())
		}
	}

	if len(el.Record.Parameters) > 0 {
		el.Record.BodyUsesFirstParam = usesName(def.ChildByFieldName("body"), source, el.Record.Parameters[0])
	}
}

func extractExpression(el *Element, def *sitter.Node, source []byte, index int) {
	inner := def.NamedChild(0)
	if inner == nil {
		el.Record.Kind = model.KindExpression
		el.Record.Name = collapseWhitespace(nodeText(def, source))
		return
	}
	switch inner.Type() {
	case "string":
		// Only the first statement of the class body is a docstring.
		if index == 0 {
			el.Record.Kind = model.KindDocstring
			el.Record.Name = docstringName
			return
		}
		el.Record.Kind = model.KindExpression
		el.Record.Name = collapseWhitespace(nodeText(inner, source))
	case "ellipsis":
		el.Record.Kind = model.KindEllipsis
		el.Record.Name = "Ellipsis"
	case "assignment", "augmented_assignment":
		el.Record.Kind = model.KindAssignment
		el.Record.HasTypeAnnotation = inner.ChildByFieldName("type") != nil
		if left := inner.ChildByFieldName("left"); left != nil {
			el.Record.Name = collapseWhitespace(nodeText(left, source))
		} else {
			el.Record.Name = collapseWhitespace(nodeText(inner, source))
		}
	default:
		el.Record.Kind = model.KindExpression
		el.Record.Name = collapseWhitespace(nodeText(inner, source))
	}
}

// decoratorInfo extracts the dotted name and call arguments of a decorator.
func decoratorInfo(dec *sitter.Node, source []byte) model.Decorator {
	expr := dec.NamedChild(0)
	if expr == nil {
		return model.Decorator{Name: strings.TrimPrefix(nodeText(dec, source), "@")}
	}

	switch expr.Type() {
	case "call":
		d := model.Decorator{}
		if fn := expr.ChildByFieldName("function"); fn != nil {
			d.Name = nodeText(fn, source)
		}
		if args := expr.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				arg := args.NamedChild(i)
				switch arg.Type() {
				case "keyword_argument":
					if v := arg.ChildByFieldName("value"); v != nil {
						d.Args = append(d.Args, unquote(nodeText(v, source)))
					}
				case "comment":
				default:
					d.Args = append(d.Args, unquote(nodeText(arg, source)))
				}
			}
		}
		return d
	default:
		return model.Decorator{Name: nodeText(expr, source)}
	}
}

// paramNames returns the declared parameter names in order, skipping bare
// separators (/ and *).
func paramNames(params *sitter.Node, source []byte) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, nodeText(p, source))
		case "default_parameter", "typed_default_parameter":
			if n := p.ChildByFieldName("name"); n != nil {
				names = append(names, nodeText(n, source))
				continue
			}
			if id := firstIdentifier(p, source); id != "" {
				names = append(names, id)
			}
		case "comment", "positional_separator", "keyword_separator":
		default:
			if id := firstIdentifier(p, source); id != "" {
				names = append(names, id)
			}
		}
	}
	return names
}

func firstIdentifier(node *sitter.Node, source []byte) string {
	if node.Type() == "identifier" {
		return nodeText(node, source)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if id := firstIdentifier(node.NamedChild(i), source); id != "" {
			return id
		}
	}
	return ""
}

// opaqueIdents make identifier use undecidable; any appearance counts as a
// use of the first parameter so eligibility stays conservative.
var opaqueIdents = map[string]bool{
	"locals": true,
	"vars":   true,
	"eval":   true,
	"exec":   true,
}

// usesName reports whether any identifier in the subtree is name. Nested
// scopes are not analyzed for shadowing: a shadowed occurrence still counts,
// which can only err toward "used".
func usesName(node *sitter.Node, source []byte, name string) bool {
	if node == nil {
		return false
	}
	if node.Type() == "identifier" {
		text := nodeText(node, source)
		return text == name || opaqueIdents[text]
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if usesName(node.NamedChild(i), source, name) {
			return true
		}
	}
	return false
}

// unquote strips a string literal's prefix letters and surrounding quotes.
// Non-string arguments pass through unchanged.
func unquote(s string) string {
	trimmed := strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) && len(trimmed) >= 2*len(q) {
			return trimmed[len(q) : len(trimmed)-len(q)]
		}
	}
	return s
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
