package jsast

import "github.com/google/uuid"

// HygieneContext disambiguates two identifiers that share the same
// textual symbol but refer to different bindings (e.g. a parameter
// named x shadowing an outer x). Two bindings refer to the same
// variable iff both Symbol and Context match.
type HygieneContext uuid.UUID

// NewHygieneContext mints a fresh, collision-proof disambiguator. It
// backs both the parser's (simulated, in tests) per-declaration
// contexts and the single private context the transform uses for
// every identifier it invents.
func NewHygieneContext() HygieneContext {
	return HygieneContext(uuid.New())
}

// IdentifierBinding is an opaque pairing of a symbol and the hygiene
// context that disambiguates it.
type IdentifierBinding struct {
	Symbol  string
	Context HygieneContext
}

// Equal reports whether two bindings refer to the same variable.
func (b IdentifierBinding) Equal(other IdentifierBinding) bool {
	return b.Symbol == other.Symbol && b.Context == other.Context
}

// Ident is a reference to, or declaration of, an identifier binding.
type Ident struct {
	Binding IdentifierBinding
	Pos     Span
}

func (i *Ident) Span() Span { return i.Pos }
func (*Ident) exprNode()    {}
func (*Ident) patternNode() {}

// Name returns the textual symbol, for display and diagnostics.
func (i *Ident) Name() string { return i.Binding.Symbol }

// NewIdent builds an Ident bound to the given hygiene context. The
// transform passes its single private context whenever it invents a
// new identifier.
func NewIdent(symbol string, ctx HygieneContext, pos Span) *Ident {
	return &Ident{Binding: IdentifierBinding{Symbol: symbol, Context: ctx}, Pos: pos}
}
