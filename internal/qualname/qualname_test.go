package qualname

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-rsc/server-actions/internal/jsast"
)

func TestFromIdent(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	ident := jsast.NewIdent("foo", ctx, jsast.NoSpan)

	qn, ok := From(ident)
	require.True(t, ok)
	assert.Equal(t, "foo", qn.String())
	assert.Empty(t, qn.Parts)
}

func TestFromMemberChain(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	foo := jsast.NewIdent("foo", ctx, jsast.NoSpan)
	bar := &jsast.MemberExpr{Object: foo, Property: jsast.NewIdent("bar", jsast.NewHygieneContext(), jsast.NoSpan)}
	baz := &jsast.MemberExpr{Object: bar, Property: jsast.NewIdent("baz", jsast.NewHygieneContext(), jsast.NoSpan), Kind: jsast.MemberOptional, Optional: true}

	qn, ok := From(baz)
	require.True(t, ok)
	assert.Equal(t, "foo.bar?.baz", qn.String())
	assert.Len(t, qn.Parts, 2)
}

func TestFromRejectsComputedAccess(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	foo := jsast.NewIdent("foo", ctx, jsast.NoSpan)
	computed := &jsast.MemberExpr{Object: foo, Property: jsast.NewIdent("bar", jsast.NewHygieneContext(), jsast.NoSpan), Computed: true}

	_, ok := From(computed)
	assert.False(t, ok)
}

func TestFromRejectsCallExpr(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	call := &jsast.CallExpr{Callee: jsast.NewIdent("foo", ctx, jsast.NoSpan)}

	_, ok := From(call)
	assert.False(t, ok)
}

func TestIsPrefixOf(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	foo := jsast.NewIdent("foo", ctx, jsast.NoSpan)
	bar := &jsast.MemberExpr{Object: foo, Property: jsast.NewIdent("bar", jsast.NewHygieneContext(), jsast.NoSpan)}
	baz := &jsast.MemberExpr{Object: bar, Property: jsast.NewIdent("baz", jsast.NewHygieneContext(), jsast.NoSpan)}

	fooBar, _ := From(bar)
	fooBarBaz, _ := From(baz)

	assert.True(t, fooBar.IsPrefixOf(fooBarBaz))
	assert.False(t, fooBarBaz.IsPrefixOf(fooBar))
	assert.True(t, fooBar.IsPrefixOf(fooBar))
}

func TestDropLastPart(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	foo := jsast.NewIdent("foo", ctx, jsast.NoSpan)
	bar := &jsast.MemberExpr{Object: foo, Property: jsast.NewIdent("bar", jsast.NewHygieneContext(), jsast.NoSpan)}

	qn, _ := From(bar)
	dropped := qn.DropLastPart()

	assert.Equal(t, "foo", dropped.String())
	if diff := cmp.Diff(QualifiedName{Base: foo.Binding}, dropped); diff != "" {
		t.Errorf("dropped qualified name mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundIdentsNestedPatterns(t *testing.T) {
	ctx := jsast.NewHygieneContext()
	a := jsast.NewIdent("a", ctx, jsast.NoSpan)
	b := jsast.NewIdent("b", ctx, jsast.NoSpan)
	rest := jsast.NewIdent("rest", ctx, jsast.NoSpan)
	def := jsast.NewIdent("withDefault", ctx, jsast.NoSpan)

	pattern := &jsast.ObjectPattern{
		Properties: []jsast.ObjectPatternProp{
			{Key: jsast.NewIdent("a", ctx, jsast.NoSpan), Value: a},
			{
				Key: jsast.NewIdent("nested", ctx, jsast.NoSpan),
				Value: &jsast.ArrayPattern{
					Elements: []jsast.Pattern{
						b,
						&jsast.AssignmentPattern{Left: def, Right: &jsast.NumericLiteral{Raw: "1"}},
					},
				},
			},
			{Key: jsast.NewIdent("rest", ctx, jsast.NoSpan), Value: &jsast.RestElement{Argument: rest}},
		},
	}

	names := BoundIdents(pattern)
	var symbols []string
	for _, n := range names {
		symbols = append(symbols, n.Symbol)
	}
	assert.ElementsMatch(t, []string{"a", "b", "withDefault", "rest"}, symbols)
}
