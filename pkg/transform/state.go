// Package transform implements the main compilation pass: it
// classifies every function-like encountered in a module, hoists
// actions and cache functions into top-level exports with proxy
// substitution, and synthesises the import/export/annotation
// scaffolding the runtime needs.
package transform

import (
	"go.uber.org/zap"

	"github.com/go-rsc/server-actions/internal/comments"
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/internal/naming"
	"github.com/go-rsc/server-actions/internal/qualname"
	"github.com/go-rsc/server-actions/pkg/config"
)

// scope carries the flags that would otherwise be saved and restored
// around a recursive descent. Each recursive call builds its own
// (possibly modified) copy, so the Go call stack does the
// save/restore the source's mutable-flag design describes explicitly.
type scope struct {
	inExportDecl     bool
	inModuleLevel    bool
	shouldTrackNames bool
	inCallee         bool
}

func (s scope) callee(v bool) scope {
	s.inCallee = v
	return s
}

// exportedIdent is one (binding, export name) pair recorded for every
// permitted export in an action or cache file.
type exportedIdent struct {
	Binding    jsast.IdentifierBinding
	ExportName string
	IsDefault  bool
}

// pass is the single mutable owner of a module's transform state. One
// pass is created per call to Run and never escapes it.
type pass struct {
	cfg      *config.Config
	filename string

	comments comments.Handle
	diag     diagnostics.Handle
	logger   *zap.SugaredLogger

	gen     *naming.Generator
	hygiene jsast.HygieneContext

	inActionFile  bool
	cacheFileKind *string

	hasAction bool
	hasCache  bool

	names          []qualname.QualifiedName
	declaredIdents []jsast.IdentifierBinding

	exportedIdents []exportedIdent
	exportActions  []string

	// Per-module-item queues, reset before dispatching each item.
	annotations       []jsast.Stmt
	extraItems        []jsast.ModuleItem
	hoistedExtraItems []jsast.ModuleItem

	// Names of synthesised default-export bindings (e.g. $$ACTION_0)
	// that need a `var $$ACTION_0;` declared at the top of the module.
	syntheticVarNames []string

	// actionId -> name, one entry per emitted action and (for action
	// files) every exported name, for the magic catalogue comment.
	catalogue map[string]string
}

func newPass(cfg *config.Config, filename string, c comments.Handle, d diagnostics.Handle, logger *zap.SugaredLogger) *pass {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &pass{
		cfg:       cfg,
		filename:  filename,
		comments:  c,
		diag:      diagnostics.NewLoggingHandle(d, logger),
		logger:    logger,
		gen:       naming.NewGenerator(),
		hygiene:   jsast.NewHygieneContext(),
		catalogue: map[string]string{},
	}
}

func (p *pass) isDeclaredBefore(binding jsast.IdentifierBinding, snapshot int) bool {
	limit := snapshot
	if limit > len(p.declaredIdents) {
		limit = len(p.declaredIdents)
	}
	for i := 0; i < limit; i++ {
		if p.declaredIdents[i].Equal(binding) {
			return true
		}
	}
	return false
}

// dedupeCaptures drops captures shadowed by a shorter prefix: if both
// `a.b` and `a.b.c` are live, only `a.b` survives, in insertion order
// of the surviving entries.
func dedupeCaptures(qns []qualname.QualifiedName) []qualname.QualifiedName {
	var out []qualname.QualifiedName
	for _, q := range qns {
		skip := false
		replaced := false
		for i, o := range out {
			if o.Equal(q) || o.IsPrefixOf(q) {
				skip = true
				break
			}
			if q.IsPrefixOf(o) {
				out[i] = q
				replaced = true
				break
			}
		}
		if skip {
			continue
		}
		if replaced {
			// q may also be a prefix of later entries; drop those too.
			kept := out[:0]
			for _, o := range out {
				if o.Equal(q) || !q.IsPrefixOf(o) {
					kept = append(kept, o)
				}
			}
			out = kept
			continue
		}
		out = append(out, q)
	}
	return out
}

func (p *pass) finalizeCaptures(namesSnapshot, declSnapshot int) []qualname.QualifiedName {
	child := append([]qualname.QualifiedName{}, p.names[namesSnapshot:]...)
	var filtered []qualname.QualifiedName
	for _, q := range child {
		if p.isDeclaredBefore(q.Base, declSnapshot) {
			filtered = append(filtered, q)
		}
	}
	return dedupeCaptures(filtered)
}
