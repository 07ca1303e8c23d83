package transform

import (
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/qualname"
)

// visitFunctionLike classifies, descends into, and (unless exempt)
// hoists a function-like node. It returns either (keptNode, nil) when
// the original definition stays in place, or (nil, proxy) when it was
// hoisted and the caller must substitute proxy for the original
// use-site.
func (p *pass) visitFunctionLike(node jsast.Node, sc scope) (jsast.Node, jsast.Expr) {
	cls := p.classifyFunctionNode(node, sc)
	hoistCandidate := (cls.isAction || cls.cacheKind != "") && !cls.exemptFromHoist

	declSnapshot := len(p.declaredIdents)
	for _, param := range funcParams(node) {
		p.declaredIdents = append(p.declaredIdents, qualname.BoundIdents(param)...)
	}
	if name := funcName(node); name != nil && !sc.inModuleLevel {
		p.declaredIdents = append(p.declaredIdents, name.Binding)
	}

	innerSc := scope{shouldTrackNames: sc.shouldTrackNames || hoistCandidate}
	namesSnapshot := len(p.names)

	arrow, isArrow := node.(*jsast.ArrowFunctionExpr)
	var rewrittenBody *jsast.BlockStmt

	switch {
	case isArrow && arrow.ExprBody && hoistCandidate:
		bodyExpr := p.visitExpr(arrow.Body.(jsast.Expr), innerSc)
		rewrittenBody = &jsast.BlockStmt{
			Body: []jsast.Stmt{&jsast.ReturnStmt{Argument: bodyExpr, Pos: bodyExpr.Span()}},
			Pos:  arrow.Pos,
		}
	case isArrow && arrow.ExprBody:
		arrow.Body = p.visitExpr(arrow.Body.(jsast.Expr), innerSc)
	default:
		rewrittenBody = p.visitBlockStmt(funcBody(node), innerSc)
	}

	p.declaredIdents = p.declaredIdents[:declSnapshot]

	if !hoistCandidate {
		if !(isArrow && arrow.ExprBody) {
			setFuncBody(node, rewrittenBody)
		}
		return node, nil
	}

	captured := p.finalizeCaptures(namesSnapshot, declSnapshot)
	p.names = p.names[:namesSnapshot]

	return nil, p.hoist(node, cls, captured, rewrittenBody)
}

func (p *pass) visitBlockStmt(b *jsast.BlockStmt, sc scope) *jsast.BlockStmt {
	if b == nil {
		return nil
	}
	for i, s := range b.Body {
		b.Body[i] = p.visitStmt(s, sc)
	}
	return b
}

func (p *pass) visitStmt(s jsast.Stmt, sc scope) jsast.Stmt {
	switch n := s.(type) {
	case *jsast.ExpressionStmt:
		n.Expr = p.visitExpr(n.Expr, sc.callee(false))
		return n

	case *jsast.ReturnStmt:
		if n.Argument != nil {
			n.Argument = p.visitExpr(n.Argument, sc.callee(false))
		}
		return n

	case *jsast.BlockStmt:
		return p.visitBlockStmt(n, sc)

	case *jsast.VariableDecl:
		for i := range n.Declarations {
			d := &n.Declarations[i]
			if d.Init != nil {
				d.Init = p.visitExpr(d.Init, sc.callee(false))
			}
			// Module-level bindings are never captures, so only
			// declarations inside a function body are recorded.
			if !sc.inModuleLevel {
				p.declaredIdents = append(p.declaredIdents, qualname.BoundIdents(d.Id)...)
			}
		}
		return n

	case *jsast.FunctionDecl:
		origName := n.Name
		if origName != nil && !sc.inModuleLevel {
			p.declaredIdents = append(p.declaredIdents, origName.Binding)
		}
		kept, proxy := p.visitFunctionLike(n, sc)
		if proxy != nil {
			return &jsast.VariableDecl{
				Kind:         "var",
				Declarations: []jsast.VariableDeclarator{{Id: origName, Init: proxy, Pos: n.Pos}},
				Pos:          n.Pos,
			}
		}
		return kept.(*jsast.FunctionDecl)

	default:
		return s
	}
}

func (p *pass) visitExpr(e jsast.Expr, sc scope) jsast.Expr {
	if e == nil {
		return nil
	}

	if sc.shouldTrackNames {
		if qn, ok := qualname.From(e); ok {
			if sc.inCallee {
				qn = qn.DropLastPart()
			}
			p.names = append(p.names, qn)
		}
	}

	switch n := e.(type) {
	case *jsast.Ident:
		return n

	case *jsast.StringLiteral, *jsast.NumericLiteral, *jsast.NullLiteral:
		return e

	case *jsast.MemberExpr:
		n.Object = p.visitExpr(n.Object, sc.callee(false))
		return n

	case *jsast.CallExpr:
		n.Callee = p.visitExpr(n.Callee, sc.callee(true))
		for i, a := range n.Args {
			n.Args[i] = p.visitExpr(a, sc.callee(false))
		}
		return n

	case *jsast.AssignmentExpr:
		n.Left = p.visitExpr(n.Left, sc.callee(false))
		n.Right = p.visitExpr(n.Right, sc.callee(false))
		return n

	case *jsast.AwaitExpr:
		n.Argument = p.visitExpr(n.Argument, sc.callee(false))
		return n

	case *jsast.ArrayExpr:
		for i, el := range n.Elements {
			if el != nil {
				n.Elements[i] = p.visitExpr(el, sc.callee(false))
			}
		}
		return n

	case *jsast.ObjectExpr:
		for i := range n.Properties {
			prop := &n.Properties[i]
			if prop.Shorthand {
				if sc.shouldTrackNames {
					if qn, ok := qualname.From(prop.Key); ok {
						p.names = append(p.names, qn)
					}
				}
				continue
			}
			prop.Value = p.visitExpr(prop.Value, sc.callee(false))
		}
		return n

	case *jsast.FunctionExpr:
		kept, proxy := p.visitFunctionLike(n, sc)
		if proxy != nil {
			return proxy
		}
		return kept.(*jsast.FunctionExpr)

	case *jsast.ArrowFunctionExpr:
		kept, proxy := p.visitFunctionLike(n, sc)
		if proxy != nil {
			return proxy
		}
		return kept.(*jsast.ArrowFunctionExpr)

	case *jsast.FunctionDecl:
		// a named function expression, sharing FunctionDecl's shape
		kept, proxy := p.visitFunctionLike(n, sc)
		if proxy != nil {
			return proxy
		}
		return kept.(*jsast.FunctionDecl)

	default:
		return e
	}
}
