package qualname

import "github.com/go-rsc/server-actions/internal/jsast"

// BoundIdents collects every identifier binding introduced by a
// pattern, recursing through array, object, rest, and default
// (assignment) patterns.
func BoundIdents(p jsast.Pattern) []jsast.IdentifierBinding {
	var out []jsast.IdentifierBinding
	collectBoundIdents(p, &out)
	return out
}

func collectBoundIdents(p jsast.Pattern, out *[]jsast.IdentifierBinding) {
	if p == nil {
		return
	}
	switch n := p.(type) {
	case *jsast.Ident:
		*out = append(*out, n.Binding)

	case *jsast.ArrayPattern:
		for _, el := range n.Elements {
			collectBoundIdents(el, out)
		}

	case *jsast.ObjectPattern:
		for _, prop := range n.Properties {
			collectBoundIdents(prop.Value, out)
		}

	case *jsast.RestElement:
		collectBoundIdents(n.Argument, out)

	case *jsast.AssignmentPattern:
		collectBoundIdents(n.Left, out)
	}
}
