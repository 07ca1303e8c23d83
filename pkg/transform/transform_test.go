package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rsc/server-actions/internal/comments"
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/fixture"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/naming"
	"github.com/go-rsc/server-actions/pkg/config"
)

func mustDecode(t *testing.T, src string) *jsast.Program {
	t.Helper()
	prog, err := fixture.Decode([]byte(src))
	require.NoError(t, err)
	return prog
}

func runPass(t *testing.T, prog *jsast.Program, cfg *config.Config, filename string) (*jsast.Program, *diagnostics.Collector, *comments.Collector) {
	t.Helper()
	var diags diagnostics.Collector
	var cs comments.Collector
	out := Run(prog, cfg, filename, &cs, &diags, nil)
	return out, &diags, &cs
}

// A server-action file with a single export keeps the declaration in
// place and gets the annotation/validation statements appended.
func TestServerActionFileSingleExport(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use server"}},
			{"type": "ExportNamed", "declaration": {
				"type": "FunctionDecl", "name": "f", "async": true,
				"params": [{"type": "Ident", "name": "a"}],
				"body": [{"type": "ReturnStmt", "argument": {"type": "Ident", "name": "a"}}]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, cs := runPass(t, prog, cfg, "/a.js")

	assert.Empty(t, diags.Diagnostics)

	wantID := naming.ActionID("", "/a.js", "f")
	require.Len(t, cs.Leading, 1)
	assert.True(t, cs.Leading[0].Block)
	text, err := comments.FormatCatalogue(map[string]string{wantID: "f"})
	require.NoError(t, err)
	assert.Equal(t, text, cs.Leading[0].Text)

	var sawRegister, sawValidate, sawFuncDecl bool
	for _, item := range out.Body {
		switch n := item.(type) {
		case *jsast.ExportNamedDecl:
			if fn, ok := n.Declaration.(*jsast.FunctionDecl); ok && fn.Name.Name() == "f" {
				sawFuncDecl = true
			}
		case *jsast.StmtItem:
			if call, ok := n.Stmt.(*jsast.ExpressionStmt).Expr.(*jsast.CallExpr); ok {
				if callee, ok := call.Callee.(*jsast.Ident); ok {
					switch callee.Name() {
					case "registerServerReference":
						sawRegister = true
						require.Len(t, call.Args, 3)
						id, ok := call.Args[1].(*jsast.StringLiteral)
						require.True(t, ok)
						assert.Equal(t, wantID, id.Value)
					case "ensureServerEntryExports":
						sawValidate = true
					}
				}
			}
		}
	}
	assert.True(t, sawFuncDecl, "original function declaration stays in place")
	assert.True(t, sawRegister, "expected a registerServerReference(...) annotation")
	assert.True(t, sawValidate, "expected an ensureServerEntryExports([...]) validation call")
}

// An inline action capturing an enclosing variable is replaced by a
// bound proxy and hoisted with a decrypt-destructure prologue.
func TestInlineActionWithCapture(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExportNamed", "declaration": {
				"type": "FunctionDecl", "name": "outer",
				"params": [{"type": "Ident", "name": "x"}],
				"body": [
					{"type": "ReturnStmt", "argument": {
						"type": "FunctionExpr", "async": true,
						"body": [
							{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use server"}},
							{"type": "ReturnStmt", "argument": {"type": "Ident", "name": "x"}}
						]
					}}
				]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, _ := runPass(t, prog, cfg, "/b.js")

	assert.Empty(t, diags.Diagnostics)
	require.Len(t, out.Body, 4, "two runtime imports are prepended; outer stays in place; the hoisted action is appended after it")

	outerDecl, ok := out.Body[2].(*jsast.ExportNamedDecl)
	require.True(t, ok)
	outerFn, ok := outerDecl.Declaration.(*jsast.FunctionDecl)
	require.True(t, ok)

	ret := outerFn.Body.Body[0].(*jsast.ReturnStmt)
	bindCall, ok := ret.Argument.(*jsast.CallExpr)
	require.True(t, ok, "the inline function use-site becomes a .bind(...) call")
	bindMember, ok := bindCall.Callee.(*jsast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "bind", bindMember.Property.Name())
	registerCall, ok := bindMember.Object.(*jsast.CallExpr)
	require.True(t, ok)
	registerCallee, ok := registerCall.Callee.(*jsast.Ident)
	require.True(t, ok)
	assert.Equal(t, "registerServerReference", registerCallee.Name())
	hoistedNameArg, ok := registerCall.Args[0].(*jsast.Ident)
	require.True(t, ok)
	assert.Equal(t, "$$RSC_SERVER_ACTION_0", hoistedNameArg.Name())

	require.Len(t, bindCall.Args, 2)
	encryptCall, ok := bindCall.Args[1].(*jsast.CallExpr)
	require.True(t, ok)
	encryptCallee := encryptCall.Callee.(*jsast.Ident)
	assert.Equal(t, "encryptActionBoundArgs", encryptCallee.Name())
	capArray := encryptCall.Args[1].(*jsast.ArrayExpr)
	require.Len(t, capArray.Elements, 1)
	capIdent := capArray.Elements[0].(*jsast.Ident)
	assert.Equal(t, "x", capIdent.Name())

	hoisted, ok := out.Body[3].(*jsast.ExportNamedDecl)
	require.True(t, ok)
	hoistedFn := hoisted.Declaration.(*jsast.FunctionDecl)
	assert.Equal(t, "$$RSC_SERVER_ACTION_0", hoistedFn.Name.Name())
	assert.True(t, hoistedFn.Async)
	require.Len(t, hoistedFn.Params, 1, "a single $$ACTION_CLOSURE_BOUND param replaces the capture")
	boundParam := hoistedFn.Params[0].(*jsast.Ident)
	assert.Equal(t, "$$ACTION_CLOSURE_BOUND", boundParam.Name())

	destructure, ok := hoistedFn.Body.Body[0].(*jsast.VariableDecl)
	require.True(t, ok)
	arrPattern := destructure.Declarations[0].Id.(*jsast.ArrayPattern)
	require.Len(t, arrPattern.Elements, 1)
	argIdent := arrPattern.Elements[0].(*jsast.Ident)
	assert.Equal(t, "$$ACTION_ARG_0", argIdent.Name())

	decryptCall := destructure.Declarations[0].Init.(*jsast.AwaitExpr).Argument.(*jsast.CallExpr)
	decryptCallee := decryptCall.Callee.(*jsast.Ident)
	assert.Equal(t, "decryptActionBoundArgs", decryptCallee.Name())

	innerReturn := hoistedFn.Body.Body[1].(*jsast.ReturnStmt)
	returnedArg := innerReturn.Argument.(*jsast.Ident)
	assert.Equal(t, "$$ACTION_ARG_0", returnedArg.Name(), "the captured use-site was rewritten inside the hoisted body")
}

// A cache arrow hoists to an exported $$cache__ var ahead of the
// rewritten const.
func TestCacheArrowHoisting(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExportNamed", "declaration": {
				"type": "VariableDecl", "declKind": "const",
				"declarations": [{
					"id": {"type": "Ident", "name": "f"},
					"init": {
						"type": "ArrowFunction", "async": true,
						"body": [
							{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use cache"}},
							{"type": "ReturnStmt", "argument": {"type": "Number", "raw": "1"}}
						]
					}
				}]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, _ := runPass(t, prog, cfg, "/c.js")

	assert.Empty(t, diags.Diagnostics)

	var sawImport, sawHoistedCache, sawRewrittenConst bool
	var hoistedIndex, rewrittenIndex = -1, -1
	for i, item := range out.Body {
		switch n := item.(type) {
		case *jsast.ImportDecl:
			if n.Source == "private-next-rsc-cache-wrapper" {
				sawImport = true
				require.Len(t, n.Specifiers, 1)
				assert.Equal(t, "cache", n.Specifiers[0].Imported)
				assert.Equal(t, "$$cache__", n.Specifiers[0].Local.Name())
			}
		case *jsast.ExportNamedDecl:
			if vd, ok := n.Declaration.(*jsast.VariableDecl); ok {
				id := vd.Declarations[0].Id.(*jsast.Ident)
				if id.Name() == "$$RSC_SERVER_CACHE_0" {
					sawHoistedCache = true
					hoistedIndex = i
					call := vd.Declarations[0].Init.(*jsast.CallExpr)
					callee := call.Callee.(*jsast.Ident)
					assert.Equal(t, "$$cache__", callee.Name())
					kind := call.Args[0].(*jsast.StringLiteral)
					assert.Equal(t, "default", kind.Value)
					fnExpr := call.Args[2].(*jsast.FunctionExpr)
					assert.True(t, fnExpr.Async)
				} else if id.Name() == "f" {
					sawRewrittenConst = true
					rewrittenIndex = i
					_, ok := vd.Declarations[0].Init.(*jsast.CallExpr)
					assert.True(t, ok, "f's initializer became the registerServerReference proxy")
				}
			}
		}
	}
	assert.True(t, sawImport)
	assert.True(t, sawHoistedCache)
	assert.True(t, sawRewrittenConst)
	assert.Less(t, hoistedIndex, rewrittenIndex, "cache hoists prepend via hoistedExtraItems, ahead of the rewritten item")
}

// A non-async action is diagnosed but still rewritten.
func TestNonAsyncActionDiagnosed(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use server"}},
			{"type": "ExportNamed", "declaration": {"type": "FunctionDecl", "name": "f", "params": [], "body": []}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	_, diags, _ := runPass(t, prog, cfg, "/d.js")

	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, diagnostics.KindNotAsync, diags.Diagnostics[0].Kind)
}

// A directive typo is reported and not stripped.
func TestDirectiveTypoNotStripped(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use servers"}},
			{"type": "ExportNamed", "declaration": {"type": "FunctionDecl", "name": "f", "async": true, "params": [], "body": []}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, cs := runPass(t, prog, cfg, "/e.js")

	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, diagnostics.KindDirectiveTypo, diags.Diagnostics[0].Kind)
	assert.Contains(t, diags.Diagnostics[0].Message, "use server")
	assert.Empty(t, cs.Leading, "no catalogue is produced when the module was never recognized as an action file")

	stmtItem, ok := out.Body[0].(*jsast.StmtItem)
	require.True(t, ok)
	lit := stmtItem.Stmt.(*jsast.ExpressionStmt).Expr.(*jsast.StringLiteral)
	assert.Equal(t, "use servers", lit.Value, "the unrecognized literal is left in place")
}

// A parenthesised directive is always an error.
func TestParenthesizedDirectiveIsError(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "parenthesized": true, "expr": {"type": "String", "value": "use server"}},
			{"type": "ExportNamed", "declaration": {"type": "FunctionDecl", "name": "f", "async": true, "params": [], "body": []}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	_, diags, cs := runPass(t, prog, cfg, "/f.js")

	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, diagnostics.KindParenthesizedDirective, diags.Diagnostics[0].Kind)
	assert.Empty(t, cs.Leading)
}

// A hoisted cache function keeps the original parameters on the
// function handed to $$cache__.
func TestCacheHoistKeepsParams(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExportNamed", "declaration": {
				"type": "VariableDecl", "declKind": "const",
				"declarations": [{
					"id": {"type": "Ident", "name": "f"},
					"init": {
						"type": "ArrowFunction", "async": true,
						"params": [{"type": "Ident", "name": "key"}],
						"body": [
							{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use cache"}},
							{"type": "ReturnStmt", "argument": {"type": "Ident", "name": "key"}}
						]
					}
				}]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, _ := runPass(t, prog, cfg, "/h.js")
	assert.Empty(t, diags.Diagnostics)

	for _, item := range out.Body {
		named, ok := item.(*jsast.ExportNamedDecl)
		if !ok {
			continue
		}
		vd, ok := named.Declaration.(*jsast.VariableDecl)
		if !ok {
			continue
		}
		id, ok := vd.Declarations[0].Id.(*jsast.Ident)
		if !ok || id.Name() != "$$RSC_SERVER_CACHE_0" {
			continue
		}
		call := vd.Declarations[0].Init.(*jsast.CallExpr)
		fnExpr := call.Args[2].(*jsast.FunctionExpr)
		require.Len(t, fnExpr.Params, 1)
		param := fnExpr.Params[0].(*jsast.Ident)
		assert.Equal(t, "key", param.Name())
		return
	}
	t.Fatal("no hoisted cache definition found")
}

// A default export of an action file registers under the name
// "default" and keeps its declaration on the server layer.
func TestActionFileDefaultExport(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use server"}},
			{"type": "ExportDefault", "declaration": {
				"type": "FunctionDecl", "name": "f", "async": true, "params": [],
				"body": [{"type": "ReturnStmt"}]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: true, Enabled: true, HashSalt: ""}
	out, diags, cs := runPass(t, prog, cfg, "/i.js")
	assert.Empty(t, diags.Diagnostics)

	wantID := naming.ActionID("", "/i.js", "default")
	require.Len(t, cs.Leading, 1)
	assert.Contains(t, cs.Leading[0].Text, `"`+wantID+`":"default"`)

	var sawDefault, sawRegister bool
	for _, item := range out.Body {
		switch n := item.(type) {
		case *jsast.ExportDefaultDecl:
			if fn, ok := n.Declaration.(*jsast.FunctionDecl); ok && fn.Name.Name() == "f" {
				sawDefault = true
			}
		case *jsast.StmtItem:
			if call, ok := n.Stmt.(*jsast.ExpressionStmt).Expr.(*jsast.CallExpr); ok {
				if callee, ok := call.Callee.(*jsast.Ident); ok && callee.Name() == "registerServerReference" {
					sawRegister = true
					id := call.Args[1].(*jsast.StringLiteral)
					assert.Equal(t, wantID, id.Value)
				}
			}
		}
	}
	assert.True(t, sawDefault, "the default-exported declaration stays in place")
	assert.True(t, sawRegister)
}

// Client layer emits createServerReference re-exports instead of
// registerServerReference annotations.
func TestClientLayerEmitsCreateServerReference(t *testing.T) {
	prog := mustDecode(t, `{
		"body": [
			{"type": "ExpressionStmt", "expr": {"type": "String", "value": "use server"}},
			{"type": "ExportNamed", "declaration": {
				"type": "FunctionDecl", "name": "f", "async": true, "params": [],
				"body": [{"type": "ReturnStmt"}]
			}}
		]
	}`)

	cfg := &config.Config{IsReactServerLayer: false, Enabled: true, HashSalt: "s"}
	out, diags, _ := runPass(t, prog, cfg, "/g.js")
	assert.Empty(t, diags.Diagnostics)

	var sawImport, sawCreateRef bool
	for _, item := range out.Body {
		switch n := item.(type) {
		case *jsast.ImportDecl:
			if n.Source == "private-next-rsc-action-client-wrapper" {
				sawImport = true
			}
		case *jsast.ExportNamedDecl:
			if vd, ok := n.Declaration.(*jsast.VariableDecl); ok {
				if call, ok := vd.Declarations[0].Init.(*jsast.CallExpr); ok {
					if callee, ok := call.Callee.(*jsast.Ident); ok && callee.Name() == "createServerReference" {
						sawCreateRef = true
					}
				}
			}
		}
	}
	assert.True(t, sawImport)
	assert.True(t, sawCreateRef)

	for _, item := range out.Body {
		if named, ok := item.(*jsast.ExportNamedDecl); ok {
			_, isFn := named.Declaration.(*jsast.FunctionDecl)
			assert.False(t, isFn, "the original server implementation is not visible on the client layer")
		}
	}
}
