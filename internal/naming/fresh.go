// Package naming generates the synthesized identifiers and action ids
// the transform invents: $$RSC_SERVER_ACTION_<n>, $$RSC_SERVER_CACHE_<n>,
// $$ACTION_CLOSURE_BOUND, $$ACTION_ARG_<i>, $$ACTION_<n>, and the
// SHA-1 action id hashed from (hashSalt, filename, exportName).
package naming

import "fmt"

// Generator produces the monotonically increasing synthesized names
// the pass hoists. Action and cache hoists share a single counter, so
// the index in a name reflects its position across both families in
// hoist order, not a per-family count.
type Generator struct {
	referenceIndex int
	syntheticID    int
}

// NewGenerator returns a Generator with all counters at zero.
func NewGenerator() *Generator {
	return &Generator{}
}

// NextActionName yields the next $$RSC_SERVER_ACTION_<n> name.
func (g *Generator) NextActionName() string {
	name := fmt.Sprintf("$$RSC_SERVER_ACTION_%d", g.referenceIndex)
	g.referenceIndex++
	return name
}

// NextCacheName yields the next $$RSC_SERVER_CACHE_<n> name.
func (g *Generator) NextCacheName() string {
	name := fmt.Sprintf("$$RSC_SERVER_CACHE_%d", g.referenceIndex)
	g.referenceIndex++
	return name
}

// NextSyntheticExportName yields the next $$ACTION_<n> binding used
// for an anonymous default-exported arrow or call expression.
func (g *Generator) NextSyntheticExportName() string {
	name := fmt.Sprintf("$$ACTION_%d", g.syntheticID)
	g.syntheticID++
	return name
}

// ClosureBoundParam is the fixed parameter name carrying the encrypted
// closure-bound argument bundle into a hoisted function.
const ClosureBoundParam = "$$ACTION_CLOSURE_BOUND"

// ActionArgName returns the positional placeholder name for the i-th
// captured free variable inside a hoisted body.
func ActionArgName(i int) string {
	return fmt.Sprintf("$$ACTION_ARG_%d", i)
}

// CacheWrapperLocal is the local binding the cache runtime import is
// aliased to.
const CacheWrapperLocal = "$$cache__"
