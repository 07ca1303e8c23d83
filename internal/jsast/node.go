package jsast

// Node is implemented by every AST node.
type Node interface {
	Span() Span
}

// Expr is any node that can appear in an expression position.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that can appear in a statement position.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is any node that can appear on the left side of a binding
// (a parameter, a destructuring target, a variable declarator id).
type Pattern interface {
	Node
	patternNode()
}

// ModuleItem is any node that can appear directly in a Program's body.
type ModuleItem interface {
	Node
	moduleItemNode()
}

// Visitor is implemented by callers of Walk. Visit is called for every
// node encountered in a depth-first, pre-order traversal; if it
// returns nil, the node's children are not visited. After a node's
// children (if any) have been visited, Visit is invoked once more with
// a nil node, mirroring go/ast.Walk's contract for marking the end of
// a subtree.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order starting at node.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, item := range n.Body {
			Walk(v, item)
		}

	case *ImportDecl:
		// leaf: specifiers carry no sub-expressions worth visiting

	case *ExportNamedDecl:
		if n.Declaration != nil {
			Walk(v, n.Declaration)
		}

	case *ExportDefaultDecl:
		Walk(v, n.Declaration)

	case *StmtItem:
		Walk(v, n.Stmt)

	case *FunctionDecl:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, p := range n.Params {
			Walk(v, p)
		}
		Walk(v, n.Body)

	case *FunctionExpr:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, p := range n.Params {
			Walk(v, p)
		}
		Walk(v, n.Body)

	case *ArrowFunctionExpr:
		for _, p := range n.Params {
			Walk(v, p)
		}
		Walk(v, n.Body)

	case *BlockStmt:
		for _, s := range n.Body {
			Walk(v, s)
		}

	case *ExpressionStmt:
		Walk(v, n.Expr)

	case *ReturnStmt:
		if n.Argument != nil {
			Walk(v, n.Argument)
		}

	case *VariableDecl:
		for _, d := range n.Declarations {
			Walk(v, d.Id)
			if d.Init != nil {
				Walk(v, d.Init)
			}
		}

	case *Ident:
		// leaf

	case *StringLiteral, *NumericLiteral, *NullLiteral:
		// leaves

	case *MemberExpr:
		Walk(v, n.Object)
		Walk(v, n.Property)

	case *CallExpr:
		Walk(v, n.Callee)
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *AssignmentExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *AwaitExpr:
		Walk(v, n.Argument)

	case *ArrayExpr:
		for _, e := range n.Elements {
			if e != nil {
				Walk(v, e)
			}
		}

	case *ObjectExpr:
		for _, p := range n.Properties {
			Walk(v, p.Key)
			if !p.Shorthand {
				Walk(v, p.Value)
			}
		}

	case *ArrayPattern:
		for _, e := range n.Elements {
			if e != nil {
				Walk(v, e)
			}
		}

	case *ObjectPattern:
		for _, p := range n.Properties {
			Walk(v, p.Key)
			Walk(v, p.Value)
		}

	case *RestElement:
		Walk(v, n.Argument)

	case *AssignmentPattern:
		Walk(v, n.Left)
		Walk(v, n.Right)

	default:
		// unknown node kind: nothing to descend into
	}

	v.Visit(nil)
}
