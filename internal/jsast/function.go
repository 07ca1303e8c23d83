package jsast

// FunctionDecl is `[async] function name(params) { body }`, valid both
// as a top-level module item and as a nested statement.
type FunctionDecl struct {
	Name   *Ident
	Params []Pattern
	Body   *BlockStmt
	Async  bool
	Pos    Span
}

func (f *FunctionDecl) Span() Span    { return f.Pos }
func (*FunctionDecl) stmtNode()       {}
func (*FunctionDecl) moduleItemNode() {}
func (*FunctionDecl) exprNode()       {} // a named function expression shares this shape

// FunctionExpr is `[async] function [name](params) { body }` used in
// expression position (e.g. as a default export or an inline value).
type FunctionExpr struct {
	Name   *Ident // nil for anonymous
	Params []Pattern
	Body   *BlockStmt
	Async  bool
	Pos    Span
}

func (f *FunctionExpr) Span() Span { return f.Pos }
func (*FunctionExpr) exprNode()    {}

// ArrowFunctionExpr is `[async] (params) => body`. Body is either a
// *BlockStmt (ExprBody=false) or an Expr (ExprBody=true, `=> expr`).
type ArrowFunctionExpr struct {
	Params   []Pattern
	Body     Node
	ExprBody bool
	Async    bool
	Pos      Span
}

func (a *ArrowFunctionExpr) Span() Span { return a.Pos }
func (*ArrowFunctionExpr) exprNode()    {}

// BodyBlock returns the arrow's body as a block, synthesizing
// `{ return expr; }` when the body is a bare expression.
func (a *ArrowFunctionExpr) BodyBlock() *BlockStmt {
	if !a.ExprBody {
		return a.Body.(*BlockStmt)
	}
	expr := a.Body.(Expr)
	return &BlockStmt{
		Body: []Stmt{&ReturnStmt{Argument: expr, Pos: expr.Span()}},
		Pos:  expr.Span(),
	}
}
