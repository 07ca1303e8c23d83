package transform

import (
	"go.uber.org/zap"

	"github.com/go-rsc/server-actions/internal/comments"
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/directive"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/naming"
	"github.com/go-rsc/server-actions/pkg/config"
)

// Run performs the full pass over program and returns the rewritten
// module. It is the single external entry point; everything else in
// this package is implementation detail of one *pass instance that
// never escapes this call.
func Run(program *jsast.Program, cfg *config.Config, filename string, commentsHandle comments.Handle, diagHandle diagnostics.Handle, logger *zap.SugaredLogger) *jsast.Program {
	p := newPass(cfg, filename, commentsHandle, diagHandle, logger)

	modRes := directive.ScanModule(program.Body, cfg.Enabled, p.diag)
	p.inActionFile = modRes.InActionFile
	p.cacheFileKind = modRes.CacheKind
	if p.inActionFile {
		p.hasAction = true
	}
	if p.cacheFileKind != nil {
		p.hasCache = true
	}

	var out []jsast.ModuleItem
	for _, item := range modRes.Remaining {
		out = append(out, p.visitModuleItem(item)...)
	}

	out = p.finalizeModule(out, program.Pos)

	return &jsast.Program{Body: out, Pos: program.Pos}
}

// finalizeModule runs the module-scope postprocessing once every item
// has been visited: runtime imports, registerServerReference/validate
// annotations or createServerReference re-exports, the cache-wrapper
// import, and the leading magic catalogue comment.
func (p *pass) finalizeModule(items []jsast.ModuleItem, modulePos jsast.Span) []jsast.ModuleItem {
	var prelude []jsast.ModuleItem
	var trailer []jsast.ModuleItem

	if len(p.syntheticVarNames) > 0 {
		decls := make([]jsast.VariableDeclarator, len(p.syntheticVarNames))
		for i, name := range p.syntheticVarNames {
			decls[i] = jsast.VariableDeclarator{Id: jsast.NewIdent(name, p.hygiene, modulePos), Pos: modulePos}
		}
		prelude = append(prelude, &jsast.StmtItem{Stmt: &jsast.VariableDecl{Kind: "var", Declarations: decls, Pos: modulePos}})
	}

	if p.inActionFile {
		if p.cfg.IsReactServerLayer {
			for _, ei := range p.exportedIdents {
				actionID := naming.ActionID(p.cfg.HashSalt, p.filename, ei.ExportName)
				p.catalogue[actionID] = ei.ExportName

				call := &jsast.CallExpr{
					Callee: jsast.NewIdent("registerServerReference", p.hygiene, modulePos),
					Args: []jsast.Expr{
						&jsast.Ident{Binding: ei.Binding, Pos: modulePos},
						&jsast.StringLiteral{Value: actionID, Pos: modulePos},
						&jsast.NullLiteral{Pos: modulePos},
					},
					Pos: modulePos,
				}
				trailer = append(trailer, &jsast.StmtItem{Stmt: &jsast.ExpressionStmt{Expr: call, Pos: modulePos}})
			}

			if len(p.exportedIdents) > 0 {
				validateArgs := make([]jsast.Expr, len(p.exportedIdents))
				for i, ei := range p.exportedIdents {
					validateArgs[i] = &jsast.Ident{Binding: ei.Binding, Pos: modulePos}
				}
				trailer = append(trailer, &jsast.StmtItem{Stmt: &jsast.ExpressionStmt{
					Expr: &jsast.CallExpr{
						Callee: jsast.NewIdent("ensureServerEntryExports", p.hygiene, modulePos),
						Args:   []jsast.Expr{&jsast.ArrayExpr{Elements: validateArgs, Pos: modulePos}},
						Pos:    modulePos,
					},
					Pos: modulePos,
				}})
				prelude = append(prelude, importDecl(p.hygiene, modulePos, "private-next-rsc-action-validate",
					[]string{"ensureServerEntryExports"}))
			}
		} else {
			prelude = append(prelude, importDecl(p.hygiene, modulePos, "private-next-rsc-action-client-wrapper",
				[]string{"createServerReference", "callServer", "findSourceMapURL"}))

			for _, ei := range p.exportedIdents {
				actionID := naming.ActionID(p.cfg.HashSalt, p.filename, ei.ExportName)
				p.catalogue[actionID] = ei.ExportName

				ref := &jsast.CallExpr{
					Callee: jsast.NewIdent("createServerReference", p.hygiene, modulePos),
					Args: []jsast.Expr{
						&jsast.StringLiteral{Value: actionID, Pos: modulePos},
						jsast.NewIdent("callServer", p.hygiene, modulePos),
						jsast.NewIdent("undefined", p.hygiene, modulePos),
						jsast.NewIdent("findSourceMapURL", p.hygiene, modulePos),
						&jsast.StringLiteral{Value: ei.ExportName, Pos: modulePos},
					},
					Pos: modulePos,
				}

				if ei.IsDefault {
					trailer = append(trailer, &jsast.ExportDefaultDecl{Declaration: ref, Pos: modulePos})
					continue
				}
				trailer = append(trailer, &jsast.ExportNamedDecl{
					Declaration: &jsast.VariableDecl{
						Kind: "const",
						Declarations: []jsast.VariableDeclarator{{
							Id:   jsast.NewIdent(ei.ExportName, p.hygiene, modulePos),
							Init: ref,
							Pos:  modulePos,
						}},
						Pos: modulePos,
					},
					Pos: modulePos,
				})
			}
		}
	}

	if (p.hasAction || p.hasCache) && p.cfg.IsReactServerLayer {
		prelude = append(prelude, importDecl(p.hygiene, modulePos, "private-next-rsc-server-reference",
			[]string{"registerServerReference"}))
		prelude = append(prelude, importDecl(p.hygiene, modulePos, "private-next-rsc-action-encryption",
			[]string{"encryptActionBoundArgs", "decryptActionBoundArgs"}))
	}

	if p.hasCache {
		prelude = append(prelude, importDeclAliased(p.hygiene, modulePos, "private-next-rsc-cache-wrapper",
			"cache", naming.CacheWrapperLocal))
	}

	out := append(append([]jsast.ModuleItem{}, prelude...), items...)
	out = append(out, trailer...)

	if p.hasAction && len(p.catalogue) > 0 {
		if err := comments.AttachCatalogue(p.comments, modulePos, p.catalogue); err != nil {
			p.logger.Errorw("failed to attach magic catalogue comment", "error", err)
		}
	}

	return out
}

func importDecl(ctx jsast.HygieneContext, pos jsast.Span, source string, names []string) jsast.ModuleItem {
	specs := make([]jsast.ImportSpecifier, len(names))
	for i, name := range names {
		specs[i] = jsast.ImportSpecifier{Imported: name, Local: jsast.NewIdent(name, ctx, pos)}
	}
	return &jsast.ImportDecl{Specifiers: specs, Source: source, Pos: pos}
}

func importDeclAliased(ctx jsast.HygieneContext, pos jsast.Span, source, imported, local string) jsast.ModuleItem {
	return &jsast.ImportDecl{
		Specifiers: []jsast.ImportSpecifier{{Imported: imported, Local: jsast.NewIdent(local, ctx, pos)}},
		Source:     source,
		Pos:        pos,
	}
}
