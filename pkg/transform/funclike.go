package transform

import "github.com/go-rsc/server-actions/internal/jsast"

// funcParams, funcBody, funcAsync and funcName let the pass treat
// FunctionDecl, FunctionExpr and ArrowFunctionExpr uniformly without a
// shared interface on internal/jsast - the three node kinds share a
// shape but not a type.

func funcParams(n jsast.Node) []jsast.Pattern {
	switch f := n.(type) {
	case *jsast.FunctionDecl:
		return f.Params
	case *jsast.FunctionExpr:
		return f.Params
	case *jsast.ArrowFunctionExpr:
		return f.Params
	}
	return nil
}

// funcBody returns the function's body as a block, synthesising the
// `{ return expr; }` wrapper for an arrow's expression body. Callers
// that must preserve a non-hoisted arrow's expression-body form should
// not use this - see pass.visitFunctionLike.
func funcBody(n jsast.Node) *jsast.BlockStmt {
	switch f := n.(type) {
	case *jsast.FunctionDecl:
		return f.Body
	case *jsast.FunctionExpr:
		return f.Body
	case *jsast.ArrowFunctionExpr:
		return f.BodyBlock()
	}
	return nil
}

func funcAsync(n jsast.Node) bool {
	switch f := n.(type) {
	case *jsast.FunctionDecl:
		return f.Async
	case *jsast.FunctionExpr:
		return f.Async
	case *jsast.ArrowFunctionExpr:
		return f.Async
	}
	return false
}

func funcName(n jsast.Node) *jsast.Ident {
	switch f := n.(type) {
	case *jsast.FunctionDecl:
		return f.Name
	case *jsast.FunctionExpr:
		return f.Name
	}
	return nil
}

func setFuncBody(n jsast.Node, body *jsast.BlockStmt) {
	switch f := n.(type) {
	case *jsast.FunctionDecl:
		f.Body = body
	case *jsast.FunctionExpr:
		f.Body = body
	case *jsast.ArrowFunctionExpr:
		f.Body = body
	}
}

func isLiteralInit(e jsast.Expr) bool {
	switch e.(type) {
	case *jsast.StringLiteral, *jsast.NumericLiteral, *jsast.NullLiteral:
		return true
	}
	return false
}

func isFunctionLike(e jsast.Expr) bool {
	switch e.(type) {
	case *jsast.ArrowFunctionExpr, *jsast.FunctionExpr, *jsast.FunctionDecl:
		return true
	}
	return false
}
