package jsast

// ImportSpecifier is one named binding of an import declaration.
type ImportSpecifier struct {
	Imported string // name exported by the source module
	Local    *Ident // local binding name
}

// ImportDecl is `import { a, b as c } from "source"`.
type ImportDecl struct {
	Specifiers []ImportSpecifier
	Source     string
	Pos        Span
}

func (i *ImportDecl) Span() Span    { return i.Pos }
func (*ImportDecl) moduleItemNode() {}

// ExportSpecifier is one `local` or `local as exported` entry of a
// named export list.
type ExportSpecifier struct {
	Local    *Ident
	Exported *Ident
}

// ExportName returns the name this specifier exports under.
func (e ExportSpecifier) ExportName() string {
	if e.Exported != nil {
		return e.Exported.Name()
	}
	return e.Local.Name()
}

// ExportNamedDecl is either `export <declaration>` (Declaration set,
// Specifiers nil) or `export { a, b as c }` (Specifiers set,
// Declaration nil). Source is non-nil only for a re-export
// (`export { a } from "mod"`), which the pass disallows inside
// action/cache files.
type ExportNamedDecl struct {
	Declaration ModuleItem
	Specifiers  []ExportSpecifier
	Source      *string
	Pos         Span
}

func (e *ExportNamedDecl) Span() Span    { return e.Pos }
func (*ExportNamedDecl) moduleItemNode() {}

// ExportDefaultDecl is `export default <declaration>`. Declaration may
// be a *FunctionDecl, *FunctionExpr, *ArrowFunctionExpr, *Ident, or
// *CallExpr.
type ExportDefaultDecl struct {
	Declaration Node
	Pos         Span
}

func (e *ExportDefaultDecl) Span() Span    { return e.Pos }
func (*ExportDefaultDecl) moduleItemNode() {}

// StmtItem wraps an ordinary statement (directive prologue literals,
// or any non-declaration statement) so it can appear as a module item.
type StmtItem struct {
	Stmt Stmt
}

func (s *StmtItem) Span() Span    { return s.Stmt.Span() }
func (*StmtItem) moduleItemNode() {}

// Program is a parsed module: an ordered list of top-level items.
type Program struct {
	Body []ModuleItem
	Pos  Span
}

func (p *Program) Span() Span { return p.Pos }
