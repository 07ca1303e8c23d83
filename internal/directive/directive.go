// Package directive recognizes and strips the "use server" / "use
// cache" / "use cache: <kind>" directive prologue from a module or
// function body, diagnosing parenthesised, misplaced, and typo'd
// variants along the way.
package directive

import (
	"strings"

	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/similarity"
)

const (
	useServerText = "use server"
	useCacheText  = "use cache"
)

// ModuleResult is the outcome of scanning a module's leading items.
type ModuleResult struct {
	InActionFile bool
	CacheKind    *string
	Remaining    []jsast.ModuleItem
}

// FunctionResult is the outcome of scanning a function body's leading
// statements. ActionSpan/CacheSpan locate the recognized directive,
// used by the caller for "inline action in client component" style
// diagnostics that need the directive's own position.
type FunctionResult struct {
	HasAction  bool
	ActionSpan jsast.Span
	CacheKind  *string
	CacheSpan  jsast.Span
	Remaining  []jsast.Stmt
}

// ScanModule consumes a module's leading directive prologue.
// actionsCacheEnabled corresponds to Config.Enabled: when false, a
// recognized "use server" is itself an error.
func ScanModule(items []jsast.ModuleItem, actionsCacheEnabled bool, diag diagnostics.Handle) ModuleResult {
	res := ModuleResult{}
	var out []jsast.ModuleItem
	leftPrologue := false

	for _, item := range items {
		stmtItem, isStmt := item.(*jsast.StmtItem)
		var exprStmt *jsast.ExpressionStmt
		if isStmt {
			exprStmt, _ = stmtItem.Stmt.(*jsast.ExpressionStmt)
		}
		lit, isString := literalText(exprStmt)
		if !isString {
			leftPrologue = true
			out = append(out, item)
			continue
		}

		drop := handleLiteral(lit, exprStmt.Pos, exprStmt.Parenthesized, leftPrologue, actionsCacheEnabled, diag, &res.InActionFile, &res.CacheKind)
		if !drop {
			out = append(out, item)
		}
	}

	res.Remaining = out
	return res
}

// ScanFunctionBody consumes a function body's leading directive
// prologue. Arrow functions with an expression body (no block) have
// no body-level directives and should not call this.
func ScanFunctionBody(body []jsast.Stmt, actionsCacheEnabled bool, diag diagnostics.Handle) FunctionResult {
	res := FunctionResult{}
	var out []jsast.Stmt
	leftPrologue := false

	for _, stmt := range body {
		exprStmt, _ := stmt.(*jsast.ExpressionStmt)
		lit, isString := literalText(exprStmt)
		if !isString {
			leftPrologue = true
			out = append(out, stmt)
			continue
		}

		before := res.HasAction
		beforeCache := res.CacheKind
		drop := handleLiteral(lit, exprStmt.Pos, exprStmt.Parenthesized, leftPrologue, actionsCacheEnabled, diag, &res.HasAction, &res.CacheKind)
		if res.HasAction && !before {
			res.ActionSpan = exprStmt.Pos
		}
		if res.CacheKind != nil && beforeCache == nil {
			res.CacheSpan = exprStmt.Pos
		}
		if !drop {
			out = append(out, stmt)
		}
	}

	res.Remaining = out
	return res
}

func literalText(exprStmt *jsast.ExpressionStmt) (string, bool) {
	if exprStmt == nil {
		return "", false
	}
	str, ok := exprStmt.Expr.(*jsast.StringLiteral)
	if !ok {
		return "", false
	}
	return str.Value, true
}

// handleLiteral classifies a single leading string-literal statement
// and reports whether it should be dropped from the output (true only
// for a directive recognized in valid, unparenthesized prefix
// position).
func handleLiteral(text string, pos jsast.Span, parenthesized, leftPrologue, actionsCacheEnabled bool, diag diagnostics.Handle, inFile *bool, cacheKind **string) bool {
	kind, isCacheDirective := parseCacheDirective(text)

	switch {
	case parenthesized && (text == useServerText || isCacheDirective ||
		similarity.Similar(text, useServerText) || similarity.Similar(text, useCacheText)):
		diag.Emit(diagnostics.New(diagnostics.KindParenthesizedDirective, pos,
			"%q cannot be wrapped in parentheses", text))
		return false

	case text == useServerText:
		if leftPrologue {
			diag.Emit(diagnostics.New(diagnostics.KindMisplacedDirective, pos,
				`"use server" must be at the top of the file`))
			return false
		}
		if !actionsCacheEnabled {
			diag.Emit(diagnostics.New(diagnostics.KindFeatureDisabled, pos,
				`"use server" is not allowed when Server Actions are disabled`))
		}
		*inFile = true
		return true

	case isCacheDirective:
		if leftPrologue {
			diag.Emit(diagnostics.New(diagnostics.KindMisplacedDirective, pos,
				"%q must be at the top of the file", text))
			return false
		}
		if !actionsCacheEnabled {
			diag.Emit(diagnostics.New(diagnostics.KindFeatureDisabled, pos,
				"%q is not allowed when Server Actions are disabled", text))
		}
		*cacheKind = &kind
		return true

	case !leftPrologue && (similarity.Similar(text, useServerText) || similarity.Similar(text, useCacheText)):
		diag.Emit(diagnostics.New(diagnostics.KindDirectiveTypo, pos,
			"did you mean %q?", suggestionFor(text)))
		return false

	default:
		return false
	}
}

// parseCacheDirective recognizes "use cache" and "use cache: <kind>",
// returning the kind ("default" for the bare form) when matched.
func parseCacheDirective(text string) (string, bool) {
	if text == useCacheText {
		return "default", true
	}
	const prefix = useCacheText + ": "
	if strings.HasPrefix(text, prefix) {
		kind := strings.TrimPrefix(text, prefix)
		if kind != "" {
			return kind, true
		}
	}
	return "", false
}

func suggestionFor(text string) string {
	if similarity.Similar(text, useServerText) {
		return useServerText
	}
	return useCacheText
}
