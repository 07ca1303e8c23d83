// Package fixture decodes a small JSON encoding of a jsast.Program.
// It exists only for the demonstration CLI (cmd/rscactions): since
// this module's Non-goals exclude a real parser, the CLI reads a
// fixture file instead of parsing source text. The pass itself never
// imports this package - it only ever consumes an in-memory
// *jsast.Program built however the host bundler builds one.
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/go-rsc/server-actions/internal/jsast"
)

// decoder tracks one hygiene context per distinct symbol name seen
// while decoding a single fixture file, so that two occurrences of the
// same identifier name resolve to the same binding. Fixture files are
// hand-written test/demo input with no shadowing, so this
// same-name-same-binding rule is good enough for the harness; it is
// never relied upon by the pass, which only ever receives bindings a
// real parser already disambiguated.
type decoder struct {
	hygiene map[string]jsast.HygieneContext
}

// Decode parses a JSON fixture into a *jsast.Program.
func Decode(data []byte) (*jsast.Program, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture: invalid JSON: %w", err)
	}

	d := &decoder{hygiene: map[string]jsast.HygieneContext{}}

	items := make([]jsast.ModuleItem, 0, len(raw.Body))
	for i, item := range raw.Body {
		mi, err := d.moduleItem(item)
		if err != nil {
			return nil, fmt.Errorf("fixture: body[%d]: %w", i, err)
		}
		items = append(items, mi)
	}

	return &jsast.Program{Body: items, Pos: d.span(raw.Pos)}, nil
}

type rawPos struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type rawProp struct {
	Key       rawNode `json:"key"`
	Value     rawNode `json:"value"`
	Shorthand bool    `json:"shorthand"`
	Pos       *rawPos `json:"pos"`
}

type rawDeclarator struct {
	Id   rawNode  `json:"id"`
	Init *rawNode `json:"init"`
	Pos  *rawPos  `json:"pos"`
}

type rawSpecifier struct {
	Local    string  `json:"local"`
	Exported *string `json:"exported"`
}

// rawNode is the tagged-union JSON shape every node decodes from. Only
// the fields relevant to Type are ever populated by a well-formed
// fixture; the rest are left zero.
type rawNode struct {
	Type string `json:"type"`

	// Ident / literals
	Name  string `json:"name"`
	Value string `json:"value"`
	Raw   string `json:"raw"`

	// flags shared across several node kinds
	Async         bool `json:"async"`
	Computed      bool `json:"computed"`
	Optional      bool `json:"optional"`
	Parenthesized bool `json:"parenthesized"`
	ExprBody      bool `json:"exprBody"`

	DeclKind string  `json:"declKind"`
	Source   *string `json:"source"`

	Body         []rawNode       `json:"body"`
	BodyExpr     *rawNode        `json:"bodyExpr"`
	Expr         *rawNode        `json:"expr"`
	Object       *rawNode        `json:"object"`
	Property     *rawNode        `json:"property"`
	Callee       *rawNode        `json:"callee"`
	Args         []rawNode       `json:"args"`
	Left         *rawNode        `json:"left"`
	Right        *rawNode        `json:"right"`
	Argument     *rawNode        `json:"argument"`
	Elements     []*rawNode      `json:"elements"`
	Properties   []rawProp       `json:"properties"`
	Params       []rawNode       `json:"params"`
	Declarations []rawDeclarator `json:"declarations"`
	Declaration  *rawNode        `json:"declaration"`
	Specifiers   []rawSpecifier  `json:"specifiers"`

	Pos *rawPos `json:"pos"`
}

func (d *decoder) span(p *rawPos) jsast.Span {
	if p == nil {
		return jsast.NoSpan
	}
	return jsast.Span{Start: jsast.Pos(p.Start), End: jsast.Pos(p.End)}
}

func (d *decoder) binding(name string) jsast.IdentifierBinding {
	ctx, ok := d.hygiene[name]
	if !ok {
		ctx = jsast.NewHygieneContext()
		d.hygiene[name] = ctx
	}
	return jsast.IdentifierBinding{Symbol: name, Context: ctx}
}

func (d *decoder) ident(n rawNode) *jsast.Ident {
	return &jsast.Ident{Binding: d.binding(n.Name), Pos: d.span(n.Pos)}
}

func (d *decoder) moduleItem(n rawNode) (jsast.ModuleItem, error) {
	switch n.Type {
	case "Import":
		specs := make([]jsast.ImportSpecifier, len(n.Specifiers))
		for i, s := range n.Specifiers {
			local := s.Local
			specs[i] = jsast.ImportSpecifier{Imported: local, Local: jsast.NewIdent(local, d.binding(local).Context, jsast.NoSpan)}
		}
		source := ""
		if n.Source != nil {
			source = *n.Source
		}
		return &jsast.ImportDecl{Specifiers: specs, Source: source, Pos: d.span(n.Pos)}, nil

	case "ExportNamed":
		decl := &jsast.ExportNamedDecl{Source: n.Source, Pos: d.span(n.Pos)}
		if n.Declaration != nil {
			inner, err := d.moduleItem(*n.Declaration)
			if err != nil {
				return nil, err
			}
			decl.Declaration = inner
		}
		for _, s := range n.Specifiers {
			local := d.ident(rawNode{Name: s.Local})
			spec := jsast.ExportSpecifier{Local: local}
			if s.Exported != nil {
				spec.Exported = d.ident(rawNode{Name: *s.Exported})
			}
			decl.Specifiers = append(decl.Specifiers, spec)
		}
		return decl, nil

	case "ExportDefault":
		if n.Declaration == nil {
			return nil, fmt.Errorf("ExportDefault requires declaration")
		}
		inner, err := d.node(*n.Declaration)
		if err != nil {
			return nil, err
		}
		return &jsast.ExportDefaultDecl{Declaration: inner, Pos: d.span(n.Pos)}, nil

	case "FunctionDecl":
		return d.functionDecl(n)

	case "VariableDecl":
		return d.variableDecl(n)

	case "ExpressionStmt":
		stmt, err := d.stmt(n)
		if err != nil {
			return nil, err
		}
		return &jsast.StmtItem{Stmt: stmt}, nil

	default:
		return nil, fmt.Errorf("unknown module item type %q", n.Type)
	}
}

// node decodes any node without regard to which marker interfaces the
// caller needs; callers that require a specific one (Expr, Stmt,
// Pattern) type-assert the result, since this package's concrete
// jsast types already implement the combinations the pass needs
// (e.g. *FunctionDecl is simultaneously a Stmt, a ModuleItem, and an
// Expr - see jsast.FunctionDecl's doc comment).
func (d *decoder) node(n rawNode) (jsast.Node, error) {
	switch n.Type {
	case "Ident":
		return d.ident(n), nil
	case "String":
		return &jsast.StringLiteral{Value: n.Value, Pos: d.span(n.Pos)}, nil
	case "Number":
		return &jsast.NumericLiteral{Raw: n.Raw, Pos: d.span(n.Pos)}, nil
	case "Null":
		return &jsast.NullLiteral{Pos: d.span(n.Pos)}, nil
	case "Member":
		return d.memberExpr(n)
	case "Call":
		return d.callExpr(n)
	case "Assignment":
		left, err := d.expr(*n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(*n.Right)
		if err != nil {
			return nil, err
		}
		return &jsast.AssignmentExpr{Left: left, Right: right, Pos: d.span(n.Pos)}, nil
	case "Await":
		arg, err := d.expr(*n.Argument)
		if err != nil {
			return nil, err
		}
		return &jsast.AwaitExpr{Argument: arg, Pos: d.span(n.Pos)}, nil
	case "Array":
		els := make([]jsast.Expr, len(n.Elements))
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			e, err := d.expr(*el)
			if err != nil {
				return nil, err
			}
			els[i] = e
		}
		return &jsast.ArrayExpr{Elements: els, Pos: d.span(n.Pos)}, nil
	case "Object":
		props := make([]jsast.ObjectProperty, len(n.Properties))
		for i, p := range n.Properties {
			key := d.ident(p.Key)
			prop := jsast.ObjectProperty{Key: key, Shorthand: p.Shorthand, Pos: d.span(p.Pos)}
			if p.Shorthand {
				prop.Value = key
			} else {
				v, err := d.expr(p.Value)
				if err != nil {
					return nil, err
				}
				prop.Value = v
			}
			props[i] = prop
		}
		return &jsast.ObjectExpr{Properties: props, Pos: d.span(n.Pos)}, nil
	case "ArrayPattern":
		els := make([]jsast.Pattern, len(n.Elements))
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			p, err := d.pattern(*el)
			if err != nil {
				return nil, err
			}
			els[i] = p
		}
		return &jsast.ArrayPattern{Elements: els, Pos: d.span(n.Pos)}, nil
	case "ObjectPattern":
		props := make([]jsast.ObjectPatternProp, len(n.Properties))
		for i, p := range n.Properties {
			key := d.ident(p.Key)
			val, err := d.pattern(p.Value)
			if err != nil {
				return nil, err
			}
			props[i] = jsast.ObjectPatternProp{Key: key, Value: val, Shorthand: p.Shorthand, Pos: d.span(p.Pos)}
		}
		return &jsast.ObjectPattern{Properties: props, Pos: d.span(n.Pos)}, nil
	case "Rest":
		arg, err := d.pattern(*n.Argument)
		if err != nil {
			return nil, err
		}
		return &jsast.RestElement{Argument: arg, Pos: d.span(n.Pos)}, nil
	case "AssignmentPattern":
		left, err := d.pattern(*n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(*n.Right)
		if err != nil {
			return nil, err
		}
		return &jsast.AssignmentPattern{Left: left, Right: right, Pos: d.span(n.Pos)}, nil
	case "FunctionDecl", "FunctionExpr":
		return d.functionDecl(n)
	case "ArrowFunction":
		return d.arrowFunction(n)
	case "BlockStmt":
		return d.blockStmt(n)
	case "ExpressionStmt", "ReturnStmt", "VariableDecl":
		return d.stmt(n)
	default:
		return nil, fmt.Errorf("unknown node type %q", n.Type)
	}
}

func (d *decoder) expr(n rawNode) (jsast.Expr, error) {
	node, err := d.node(n)
	if err != nil {
		return nil, err
	}
	e, ok := node.(jsast.Expr)
	if !ok {
		return nil, fmt.Errorf("node type %q is not an expression", n.Type)
	}
	return e, nil
}

func (d *decoder) pattern(n rawNode) (jsast.Pattern, error) {
	node, err := d.node(n)
	if err != nil {
		return nil, err
	}
	p, ok := node.(jsast.Pattern)
	if !ok {
		return nil, fmt.Errorf("node type %q is not a pattern", n.Type)
	}
	return p, nil
}

func (d *decoder) stmt(n rawNode) (jsast.Stmt, error) {
	switch n.Type {
	case "ExpressionStmt":
		e, err := d.expr(*n.Expr)
		if err != nil {
			return nil, err
		}
		return &jsast.ExpressionStmt{Expr: e, Parenthesized: n.Parenthesized, Pos: d.span(n.Pos)}, nil
	case "ReturnStmt":
		var arg jsast.Expr
		if n.Argument != nil {
			var err error
			arg, err = d.expr(*n.Argument)
			if err != nil {
				return nil, err
			}
		}
		return &jsast.ReturnStmt{Argument: arg, Pos: d.span(n.Pos)}, nil
	case "VariableDecl":
		return d.variableDecl(n)
	case "BlockStmt":
		return d.blockStmt(n)
	case "FunctionDecl":
		return d.functionDecl(n)
	default:
		return nil, fmt.Errorf("node type %q is not a statement", n.Type)
	}
}

func (d *decoder) variableDecl(n rawNode) (*jsast.VariableDecl, error) {
	kind := n.DeclKind
	if kind == "" {
		kind = "const"
	}
	decls := make([]jsast.VariableDeclarator, len(n.Declarations))
	for i, raw := range n.Declarations {
		id, err := d.pattern(raw.Id)
		if err != nil {
			return nil, err
		}
		decl := jsast.VariableDeclarator{Id: id, Pos: d.span(raw.Pos)}
		if raw.Init != nil {
			init, err := d.expr(*raw.Init)
			if err != nil {
				return nil, err
			}
			decl.Init = init
		}
		decls[i] = decl
	}
	return &jsast.VariableDecl{Kind: kind, Declarations: decls, Pos: d.span(n.Pos)}, nil
}

func (d *decoder) blockStmt(n rawNode) (*jsast.BlockStmt, error) {
	stmts := make([]jsast.Stmt, len(n.Body))
	for i, s := range n.Body {
		st, err := d.stmt(s)
		if err != nil {
			return nil, err
		}
		stmts[i] = st
	}
	return &jsast.BlockStmt{Body: stmts, Pos: d.span(n.Pos)}, nil
}

func (d *decoder) functionDecl(n rawNode) (*jsast.FunctionDecl, error) {
	params := make([]jsast.Pattern, len(n.Params))
	for i, p := range n.Params {
		pat, err := d.pattern(p)
		if err != nil {
			return nil, err
		}
		params[i] = pat
	}
	body, err := d.blockStmt(n)
	if err != nil {
		return nil, err
	}
	var name *jsast.Ident
	if n.Name != "" {
		name = d.ident(rawNode{Name: n.Name})
	}
	return &jsast.FunctionDecl{Name: name, Params: params, Body: body, Async: n.Async, Pos: d.span(n.Pos)}, nil
}

func (d *decoder) arrowFunction(n rawNode) (*jsast.ArrowFunctionExpr, error) {
	params := make([]jsast.Pattern, len(n.Params))
	for i, p := range n.Params {
		pat, err := d.pattern(p)
		if err != nil {
			return nil, err
		}
		params[i] = pat
	}
	arrow := &jsast.ArrowFunctionExpr{Params: params, Async: n.Async, Pos: d.span(n.Pos)}
	if n.BodyExpr != nil {
		expr, err := d.expr(*n.BodyExpr)
		if err != nil {
			return nil, err
		}
		arrow.Body = expr
		arrow.ExprBody = true
		return arrow, nil
	}
	block, err := d.blockStmt(n)
	if err != nil {
		return nil, err
	}
	arrow.Body = block
	return arrow, nil
}

func (d *decoder) memberExpr(n rawNode) (*jsast.MemberExpr, error) {
	obj, err := d.expr(*n.Object)
	if err != nil {
		return nil, err
	}
	prop := d.ident(*n.Property)
	kind := jsast.MemberPlain
	if n.Optional {
		kind = jsast.MemberOptional
	}
	return &jsast.MemberExpr{Object: obj, Property: prop, Kind: kind, Computed: n.Computed, Optional: n.Optional, Pos: d.span(n.Pos)}, nil
}

func (d *decoder) callExpr(n rawNode) (*jsast.CallExpr, error) {
	callee, err := d.expr(*n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]jsast.Expr, len(n.Args))
	for i, a := range n.Args {
		e, err := d.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return &jsast.CallExpr{Callee: callee, Args: args, Pos: d.span(n.Pos)}, nil
}
