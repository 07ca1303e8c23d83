// Package closure implements the hoisted-body rewrite: every
// occurrence of a captured qualified name becomes a positional
// $$ACTION_ARG_<i> placeholder, so the hoisted function can be called
// with its captures supplied as an ordinary argument instead of a
// lexical closure.
package closure

import (
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/naming"
	"github.com/go-rsc/server-actions/internal/qualname"
)

type rewriter struct {
	captures []qualname.QualifiedName
	hygiene  jsast.HygieneContext
}

// Rewrite replaces every use-site of a captured qualified name inside
// body with $$ACTION_ARG_<i>, mutating and returning body. hygiene is
// the pass's single private hygiene context, shared by every
// identifier the pass invents.
func Rewrite(body *jsast.BlockStmt, captures []qualname.QualifiedName, hygiene jsast.HygieneContext) *jsast.BlockStmt {
	if len(captures) == 0 {
		return body
	}
	r := &rewriter{captures: captures, hygiene: hygiene}
	return r.rewriteBlock(body)
}

func (r *rewriter) indexOf(qn qualname.QualifiedName) (int, bool) {
	for i, c := range r.captures {
		if c.Equal(qn) {
			return i, true
		}
	}
	return -1, false
}

func (r *rewriter) argIdent(i int, pos jsast.Span) *jsast.Ident {
	return jsast.NewIdent(naming.ActionArgName(i), r.hygiene, pos)
}

func (r *rewriter) rewriteBlock(b *jsast.BlockStmt) *jsast.BlockStmt {
	if b == nil {
		return nil
	}
	for i, s := range b.Body {
		b.Body[i] = r.rewriteStmt(s)
	}
	return b
}

func (r *rewriter) rewriteStmt(s jsast.Stmt) jsast.Stmt {
	switch n := s.(type) {
	case *jsast.ExpressionStmt:
		n.Expr = r.rewriteExpr(n.Expr)
		return n
	case *jsast.ReturnStmt:
		if n.Argument != nil {
			n.Argument = r.rewriteExpr(n.Argument)
		}
		return n
	case *jsast.BlockStmt:
		return r.rewriteBlock(n)
	case *jsast.VariableDecl:
		for i := range n.Declarations {
			if n.Declarations[i].Init != nil {
				n.Declarations[i].Init = r.rewriteExpr(n.Declarations[i].Init)
			}
		}
		return n
	case *jsast.FunctionDecl:
		n.Body = r.rewriteBlock(n.Body)
		return n
	default:
		return s
	}
}

func (r *rewriter) rewriteExpr(e jsast.Expr) jsast.Expr {
	if e == nil {
		return nil
	}

	if qn, ok := qualname.From(e); ok {
		if i, found := r.indexOf(qn); found {
			return r.argIdent(i, e.Span())
		}
	}

	switch n := e.(type) {
	case *jsast.MemberExpr:
		n.Object = r.rewriteExpr(n.Object)
		return n

	case *jsast.CallExpr:
		n.Callee = r.rewriteExpr(n.Callee)
		for i, a := range n.Args {
			n.Args[i] = r.rewriteExpr(a)
		}
		return n

	case *jsast.AssignmentExpr:
		n.Left = r.rewriteExpr(n.Left)
		n.Right = r.rewriteExpr(n.Right)
		return n

	case *jsast.AwaitExpr:
		n.Argument = r.rewriteExpr(n.Argument)
		return n

	case *jsast.ArrayExpr:
		for i, el := range n.Elements {
			if el != nil {
				n.Elements[i] = r.rewriteExpr(el)
			}
		}
		return n

	case *jsast.ObjectExpr:
		for i := range n.Properties {
			p := &n.Properties[i]
			if p.Shorthand {
				if qn, ok := qualname.From(p.Key); ok {
					if idx, found := r.indexOf(qn); found {
						p.Value = r.argIdent(idx, p.Pos)
						p.Shorthand = false
						continue
					}
				}
				continue
			}
			p.Value = r.rewriteExpr(p.Value)
		}
		return n

	case *jsast.FunctionExpr:
		n.Body = r.rewriteBlock(n.Body)
		return n

	case *jsast.FunctionDecl:
		// a named function expression, sharing FunctionDecl's shape
		n.Body = r.rewriteBlock(n.Body)
		return n

	case *jsast.ArrowFunctionExpr:
		if n.ExprBody {
			n.Body = r.rewriteExpr(n.Body.(jsast.Expr))
		} else {
			n.Body = r.rewriteBlock(n.Body.(*jsast.BlockStmt))
		}
		return n

	default:
		return e
	}
}
