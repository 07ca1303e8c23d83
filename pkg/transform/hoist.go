package transform

import (
	"github.com/go-rsc/server-actions/internal/closure"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/naming"
	"github.com/go-rsc/server-actions/internal/qualname"
)

// hoist lifts a classified function into a top-level export. It covers
// all four variants (arrow/function crossed with action/cache).
// node is the original function-like node (used
// only for its params and span); body is its already-visited body.
// The returned expression is the proxy that replaces the original
// use-site.
func (p *pass) hoist(node jsast.Node, cls classification, captured []qualname.QualifiedName, body *jsast.BlockStmt) jsast.Expr {
	pos := node.Span()

	var hoistedName string
	if cls.isAction {
		hoistedName = p.gen.NextActionName()
		p.exportActions = append(p.exportActions, hoistedName)
		p.hasAction = true
	} else {
		hoistedName = p.gen.NextCacheName()
		p.exportActions = append(p.exportActions, hoistedName)
		p.hasCache = true
	}

	actionID := naming.ActionID(p.cfg.HashSalt, p.filename, hoistedName)
	p.catalogue[actionID] = hoistedName

	p.logger.Debugw("hoist",
		"kind", hoistKind(cls),
		"hoisted_name", hoistedName,
		"action_id", actionID,
		"captures", len(captured),
	)

	rewritten := closure.Rewrite(body, captured, p.hygiene)

	params := make([]jsast.Pattern, 0, len(funcParams(node))+1)
	bodyStmts := rewritten.Body

	if len(captured) > 0 {
		boundParam := jsast.NewIdent(naming.ClosureBoundParam, p.hygiene, pos)
		params = append(params, boundParam)

		elems := make([]jsast.Pattern, len(captured))
		for i := range captured {
			elems[i] = jsast.NewIdent(naming.ActionArgName(i), p.hygiene, pos)
		}
		decrypt := &jsast.AwaitExpr{
			Argument: &jsast.CallExpr{
				Callee: jsast.NewIdent("decryptActionBoundArgs", p.hygiene, pos),
				Args: []jsast.Expr{
					&jsast.StringLiteral{Value: actionID, Pos: pos},
					boundParam,
				},
				Pos: pos,
			},
			Pos: pos,
		}
		destructure := &jsast.VariableDecl{
			Kind: "var",
			Declarations: []jsast.VariableDeclarator{{
				Id:   &jsast.ArrayPattern{Elements: elems, Pos: pos},
				Init: decrypt,
				Pos:  pos,
			}},
			Pos: pos,
		}
		bodyStmts = append([]jsast.Stmt{destructure}, bodyStmts...)
	}
	params = append(params, funcParams(node)...)

	hoistedBody := &jsast.BlockStmt{Body: bodyStmts, Pos: pos}
	hoistedNameIdent := jsast.NewIdent(hoistedName, p.hygiene, pos)

	if cls.isAction {
		p.extraItems = append(p.extraItems, &jsast.ExportNamedDecl{
			Declaration: &jsast.FunctionDecl{
				Name:   hoistedNameIdent,
				Params: params,
				Body:   hoistedBody,
				Async:  true,
				Pos:    pos,
			},
			Pos: pos,
		})
	} else {
		cacheCallee := jsast.NewIdent(naming.CacheWrapperLocal, p.hygiene, pos)
		p.hoistedExtraItems = append(p.hoistedExtraItems, &jsast.ExportNamedDecl{
			Declaration: &jsast.VariableDecl{
				Kind: "var",
				Declarations: []jsast.VariableDeclarator{{
					Id: hoistedNameIdent,
					Init: &jsast.CallExpr{
						Callee: cacheCallee,
						Args: []jsast.Expr{
							&jsast.StringLiteral{Value: cls.cacheKind, Pos: pos},
							&jsast.StringLiteral{Value: actionID, Pos: pos},
							&jsast.FunctionExpr{Params: params, Body: hoistedBody, Async: true, Pos: pos},
						},
						Pos: pos,
					},
					Pos: pos,
				}},
				Pos: pos,
			},
			Pos: pos,
		})
	}

	return p.buildProxy(hoistedNameIdent, actionID, captured, pos)
}

// buildProxy constructs registerServerReference(hoistedName, actionId,
// null), wrapped in .bind(null, encryptActionBoundArgs(actionId,
// [cap0, cap1, ...])) when there are captures.
func (p *pass) buildProxy(hoistedName *jsast.Ident, actionID string, captured []qualname.QualifiedName, pos jsast.Span) jsast.Expr {
	register := &jsast.CallExpr{
		Callee: jsast.NewIdent("registerServerReference", p.hygiene, pos),
		Args: []jsast.Expr{
			hoistedName,
			&jsast.StringLiteral{Value: actionID, Pos: pos},
			&jsast.NullLiteral{Pos: pos},
		},
		Pos: pos,
	}

	if len(captured) == 0 {
		return register
	}

	capExprs := make([]jsast.Expr, len(captured))
	for i, q := range captured {
		capExprs[i] = qualname.ToExpr(q, pos)
	}

	encrypt := &jsast.CallExpr{
		Callee: jsast.NewIdent("encryptActionBoundArgs", p.hygiene, pos),
		Args: []jsast.Expr{
			&jsast.StringLiteral{Value: actionID, Pos: pos},
			&jsast.ArrayExpr{Elements: capExprs, Pos: pos},
		},
		Pos: pos,
	}

	bindMember := &jsast.MemberExpr{
		Object:   register,
		Property: &jsast.Ident{Binding: jsast.IdentifierBinding{Symbol: "bind"}, Pos: pos},
		Pos:      pos,
	}

	return &jsast.CallExpr{
		Callee: bindMember,
		Args:   []jsast.Expr{&jsast.NullLiteral{Pos: pos}, encrypt},
		Pos:    pos,
	}
}

func hoistKind(cls classification) string {
	if cls.isAction {
		return "action"
	}
	return "cache"
}
