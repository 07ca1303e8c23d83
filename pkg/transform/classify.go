package transform

import (
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/directive"
	"github.com/go-rsc/server-actions/internal/jsast"
)

// classification is the result of examining one function-like node,
// plus bookkeeping the hoister and the module-item rewriter need.
type classification struct {
	isAction bool
	// cacheKind is "" when the function is not a cache function.
	cacheKind string
	// span locates the directive (or, absent one, the function
	// itself) for "must be async" diagnostics.
	span jsast.Span
	// exemptFromHoist is true when classification came from the
	// function being an exported top-level member of an action or
	// cache file: the original definition is kept
	// in place and handled by module-item export rewriting instead.
	exemptFromHoist bool
}

// classifyFunctionNode decides whether a function-like node is an
// action or a cache function. It runs the directive scanner
// over the body (mutating it to drop the recognized directive) and
// combines the result with the module's own file-level classification
// and the current export context.
func (p *pass) classifyFunctionNode(node jsast.Node, sc scope) classification {
	cls := classification{span: node.Span()}
	ownAction := false

	if arrow, ok := node.(*jsast.ArrowFunctionExpr); ok && arrow.ExprBody {
		// An arrow with a bare expression body has no body-level
		// directive prologue to scan.
	} else {
		body := funcBody(node)
		res := directive.ScanFunctionBody(body.Body, p.cfg.Enabled, p.diag)
		body.Body = res.Remaining

		if res.HasAction {
			if !p.cfg.IsReactServerLayer && !p.inActionFile {
				p.diag.Emit(diagnostics.New(diagnostics.KindInlineActionInClient, res.ActionSpan,
					"Server actions may not be defined inline inside a client component"))
			}
			cls.isAction = true
			cls.span = res.ActionSpan
			ownAction = true
		}
		if res.CacheKind != nil {
			if !p.cfg.IsReactServerLayer && p.cacheFileKind == nil {
				p.diag.Emit(diagnostics.New(diagnostics.KindInlineCacheInClient, res.CacheSpan,
					"Cache functions may not be defined inline inside a client component"))
			}
			cls.cacheKind = *res.CacheKind
			if !res.HasAction {
				cls.span = res.CacheSpan
			}
		}
	}

	if p.inActionFile && sc.inExportDecl {
		cls.isAction = true
		cls.exemptFromHoist = true
	}
	// A function's own "use server" directive always wins over an
	// inherited module-level "use cache" kind, even when both are
	// present (a function-level directive is more specific).
	if p.cacheFileKind != nil && sc.inExportDecl && !ownAction {
		cls.cacheKind = *p.cacheFileKind
		cls.exemptFromHoist = true
	}

	if (cls.isAction || cls.cacheKind != "") && !funcAsync(node) {
		p.diag.Emit(diagnostics.New(diagnostics.KindNotAsync, cls.span, "Server actions must be async functions"))
	}

	return cls
}
