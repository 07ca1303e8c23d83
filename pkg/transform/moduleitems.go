package transform

import (
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/qualname"
)

// visitModuleItem resets the pending queues, dispatches the item, and
// reassembles the output in order: hoistedExtraItems, then the
// rewritten item, then annotations, then extraItems. Downstream
// tooling depends on this ordering.
func (p *pass) visitModuleItem(item jsast.ModuleItem) []jsast.ModuleItem {
	p.annotations = nil
	p.extraItems = nil
	p.hoistedExtraItems = nil

	rewritten := p.dispatchModuleItem(item)

	var out []jsast.ModuleItem
	out = append(out, p.hoistedExtraItems...)
	if rewritten != nil && !p.skipRewrittenItem() {
		out = append(out, rewritten)
	}
	for _, stmt := range p.annotations {
		out = append(out, &jsast.StmtItem{Stmt: stmt})
	}
	out = append(out, p.extraItems...)
	return out
}

// skipRewrittenItem implements "skip the rewritten item itself on the
// client layer when the module is an action file": the client only
// ever sees the generated createServerReference bindings synthesised
// at module-scope, never the original server-side implementation.
func (p *pass) skipRewrittenItem() bool {
	return p.inActionFile && !p.cfg.IsReactServerLayer
}

func (p *pass) dispatchModuleItem(item jsast.ModuleItem) jsast.ModuleItem {
	switch n := item.(type) {
	case *jsast.ImportDecl:
		return n

	case *jsast.ExportNamedDecl:
		return p.visitExportNamedDecl(n)

	case *jsast.ExportDefaultDecl:
		return p.visitExportDefaultDecl(n)

	case *jsast.StmtItem:
		n.Stmt = p.visitStmt(n.Stmt, scope{inModuleLevel: true})
		return n

	case *jsast.FunctionDecl:
		kept, proxy := p.visitFunctionLike(n, scope{inModuleLevel: true})
		if proxy != nil {
			return &jsast.StmtItem{Stmt: &jsast.VariableDecl{
				Kind:         "var",
				Declarations: []jsast.VariableDeclarator{{Id: n.Name, Init: proxy, Pos: n.Pos}},
				Pos:          n.Pos,
			}}
		}
		return kept.(*jsast.FunctionDecl)

	case *jsast.VariableDecl:
		sc := scope{inModuleLevel: true}
		for i := range n.Declarations {
			d := &n.Declarations[i]
			if d.Init != nil {
				d.Init = p.visitExpr(d.Init, sc.callee(false))
			}
		}
		return n

	default:
		return item
	}
}

func (p *pass) inSpecialFile() bool {
	return p.inActionFile || p.cacheFileKind != nil
}

// visitExportNamedDecl handles `export function`, `export const/var`,
// and `export { a, b as c }`: legality checks for action/cache files
// plus export bookkeeping.
func (p *pass) visitExportNamedDecl(n *jsast.ExportNamedDecl) jsast.ModuleItem {
	special := p.inSpecialFile()

	if n.Source != nil {
		if special {
			p.diag.Emit(diagnostics.New(diagnostics.KindDisallowedExport, n.Pos,
				"re-exports are not allowed in a server action or cache file"))
		}
		return n
	}

	if n.Declaration == nil {
		for _, spec := range n.Specifiers {
			if special {
				p.exportedIdents = append(p.exportedIdents, exportedIdent{
					Binding:    spec.Local.Binding,
					ExportName: spec.ExportName(),
				})
			}
		}
		return n
	}

	switch decl := n.Declaration.(type) {
	case *jsast.FunctionDecl:
		name := decl.Name
		kept, proxy := p.visitFunctionLike(decl, scope{inExportDecl: true, inModuleLevel: true})
		if special && name != nil {
			p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: name.Binding, ExportName: name.Name()})
		}
		if proxy != nil {
			n.Declaration = &jsast.VariableDecl{
				Kind:         "var",
				Declarations: []jsast.VariableDeclarator{{Id: name, Init: proxy, Pos: decl.Pos}},
				Pos:          decl.Pos,
			}
		} else {
			n.Declaration = kept.(*jsast.FunctionDecl)
		}
		return n

	case *jsast.VariableDecl:
		for i := range decl.Declarations {
			d := &decl.Declarations[i]
			if special && d.Init != nil && isLiteralInit(d.Init) {
				p.diag.Emit(diagnostics.New(diagnostics.KindDisallowedExport, d.Pos,
					"literal exports are not allowed in a server action or cache file"))
			}
			sc := scope{inModuleLevel: true}
			if d.Init != nil && isFunctionLike(d.Init) {
				sc.inExportDecl = true
			}
			if d.Init != nil {
				d.Init = p.visitExpr(d.Init, sc.callee(false))
			}
			if special {
				for _, b := range qualname.BoundIdents(d.Id) {
					p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: b, ExportName: b.Symbol})
				}
			}
		}
		return n

	default:
		if special {
			p.diag.Emit(diagnostics.New(diagnostics.KindDisallowedExport, n.Pos,
				"unsupported export declaration in a server action or cache file"))
		}
		return n
	}
}

// visitExportDefaultDecl handles `export default`: function, named
// function, arrow, identifier, or call are permitted in action/cache
// files; anonymous arrows/calls get a synthesised binding.
func (p *pass) visitExportDefaultDecl(n *jsast.ExportDefaultDecl) jsast.ModuleItem {
	special := p.inSpecialFile()
	sc := scope{inExportDecl: true, inModuleLevel: true}

	switch decl := n.Declaration.(type) {
	case *jsast.FunctionDecl:
		name := decl.Name
		kept, proxy := p.visitFunctionLike(decl, sc)
		if proxy != nil {
			n.Declaration = proxy
			return n
		}
		if special && name == nil {
			// An anonymous default function has no binding to
			// register; give it a synthesised one like an anonymous
			// arrow.
			n.Declaration = p.synthesizeDefaultBinding(kept.(*jsast.FunctionDecl), decl.Pos)
			return n
		}
		if special {
			p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: name.Binding, ExportName: "default", IsDefault: true})
		}
		n.Declaration = kept.(*jsast.FunctionDecl)
		return n

	case *jsast.FunctionExpr:
		kept, proxy := p.visitFunctionLike(decl, sc)
		if proxy != nil {
			n.Declaration = proxy
			return n
		}
		if special && decl.Name == nil {
			n.Declaration = p.synthesizeDefaultBinding(kept.(*jsast.FunctionExpr), decl.Pos)
			return n
		}
		if special {
			p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: decl.Name.Binding, ExportName: "default", IsDefault: true})
		}
		n.Declaration = kept.(*jsast.FunctionExpr)
		return n

	case *jsast.ArrowFunctionExpr:
		kept, proxy := p.visitFunctionLike(decl, sc)
		if proxy != nil {
			n.Declaration = proxy
			return n
		}
		arrow := kept.(*jsast.ArrowFunctionExpr)
		if special {
			n.Declaration = p.synthesizeDefaultBinding(arrow, decl.Pos)
		} else {
			n.Declaration = arrow
		}
		return n

	case *jsast.Ident:
		if special {
			p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: decl.Binding, ExportName: "default", IsDefault: true})
		}
		return n

	case *jsast.CallExpr:
		visited := p.visitExpr(decl, sc.callee(false))
		if special {
			n.Declaration = p.synthesizeDefaultBinding(visited, decl.Pos)
		} else {
			n.Declaration = visited
		}
		return n

	default:
		if special {
			p.diag.Emit(diagnostics.New(diagnostics.KindDisallowedExport, n.Pos,
				"default export must be a function, arrow, identifier, or call expression"))
		}
		return n
	}
}

// synthesizeDefaultBinding implements "default-exported anonymous
// arrows/calls receive a fresh synthesised binding ... rewritten in
// place to ($$ACTION_0 = <expr>) after declaring var $$ACTION_0;".
func (p *pass) synthesizeDefaultBinding(expr jsast.Expr, pos jsast.Span) jsast.Expr {
	name := p.gen.NextSyntheticExportName()
	binding := jsast.IdentifierBinding{Symbol: name, Context: p.hygiene}
	p.syntheticVarNames = append(p.syntheticVarNames, name)

	p.exportedIdents = append(p.exportedIdents, exportedIdent{Binding: binding, ExportName: "default", IsDefault: true})

	return &jsast.AssignmentExpr{
		Left:  &jsast.Ident{Binding: binding, Pos: pos},
		Right: expr,
		Pos:   pos,
	}
}
