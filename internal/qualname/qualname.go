// Package qualname canonicalises expressions into qualified names -
// an identifier plus an ordered chain of non-computed property
// accesses, plain or optional-chain -
// and collects the identifiers bound by destructuring patterns.
package qualname

import "github.com/go-rsc/server-actions/internal/jsast"

// PartKind distinguishes a plain member access from an optional-chain one.
type PartKind int

const (
	PartMember PartKind = iota
	PartOptionalMember
)

// Part is one property-access step of a qualified name.
type Part struct {
	Property string
	Kind     PartKind
	Optional bool
}

// QualifiedName is a base identifier binding plus an ordered list of
// property-access parts. It never contains computed, call, or
// non-identifier accesses - From returns false instead of producing
// an approximate name for those.
type QualifiedName struct {
	Base  jsast.IdentifierBinding
	Parts []Part
}

// Equal reports whether two qualified names refer to the same path.
func (q QualifiedName) Equal(other QualifiedName) bool {
	if !q.Base.Equal(other.Base) {
		return false
	}
	if len(q.Parts) != len(other.Parts) {
		return false
	}
	for i := range q.Parts {
		if q.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether q is a strict or equal prefix of other -
// i.e. other is q itself or a deeper property access rooted at q.
func (q QualifiedName) IsPrefixOf(other QualifiedName) bool {
	if !q.Base.Equal(other.Base) || len(q.Parts) > len(other.Parts) {
		return false
	}
	for i := range q.Parts {
		if q.Parts[i] != other.Parts[i] {
			return false
		}
	}
	return true
}

// String renders the name for diagnostics and generated source, e.g.
// "foo.bar?.baz".
func (q QualifiedName) String() string {
	s := q.Base.Symbol
	for _, p := range q.Parts {
		if p.Kind == PartOptionalMember {
			s += "?." + p.Property
		} else {
			s += "." + p.Property
		}
	}
	return s
}

// From canonicalises an expression into a QualifiedName. It fails
// (ok=false) for computed member access, call expressions, or any
// non-identifier leaf - such expressions are never capture
// candidates.
func From(expr jsast.Expr) (QualifiedName, bool) {
	switch e := expr.(type) {
	case *jsast.Ident:
		return QualifiedName{Base: e.Binding}, true

	case *jsast.MemberExpr:
		if e.Computed {
			return QualifiedName{}, false
		}
		base, ok := From(e.Object)
		if !ok {
			return QualifiedName{}, false
		}
		kind := PartMember
		if e.Kind == jsast.MemberOptional {
			kind = PartOptionalMember
		}
		base.Parts = append(append([]Part{}, base.Parts...), Part{
			Property: e.Property.Name(),
			Kind:     kind,
			Optional: e.Kind == jsast.MemberOptional,
		})
		return base, true

	default:
		return QualifiedName{}, false
	}
}

// DropLastPart returns a copy of q with its final property-access
// part removed, used when a qualified name appears in callee position
// (`foo.bar()` tracks `foo`, not `foo.bar`).
func (q QualifiedName) DropLastPart() QualifiedName {
	if len(q.Parts) == 0 {
		return q
	}
	out := QualifiedName{Base: q.Base, Parts: append([]Part{}, q.Parts[:len(q.Parts)-1]...)}
	return out
}

// ToExpr rebuilds an expression from a qualified name, used when
// emitting the original capture expression at a hoisted call site.
func ToExpr(q QualifiedName, pos jsast.Span) jsast.Expr {
	var expr jsast.Expr = &jsast.Ident{Binding: q.Base, Pos: pos}
	for _, p := range q.Parts {
		kind := jsast.MemberPlain
		if p.Kind == PartOptionalMember {
			kind = jsast.MemberOptional
		}
		expr = &jsast.MemberExpr{
			Object:   expr,
			Property: &jsast.Ident{Binding: jsast.IdentifierBinding{Symbol: p.Property}, Pos: pos},
			Kind:     kind,
			Optional: p.Optional,
			Pos:      pos,
		}
	}
	return expr
}
