// Package diagnostics implements the pass's error-reporting contract:
// every misuse the pass recognizes is emitted as a Diagnostic attached
// to the offending node's span; none of them abort the traversal.
package diagnostics

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-rsc/server-actions/internal/jsast"
)

// Kind enumerates the recoverable error kinds the pass can diagnose.
type Kind string

const (
	KindFeatureDisabled        Kind = "feature-disabled"
	KindInlineActionInClient   Kind = "inline-action-in-client"
	KindInlineCacheInClient    Kind = "inline-cache-in-client"
	KindMisplacedDirective     Kind = "misplaced-directive"
	KindParenthesizedDirective Kind = "parenthesized-directive"
	KindDirectiveTypo          Kind = "directive-typo"
	KindNotAsync               Kind = "not-async"
	KindDisallowedExport       Kind = "disallowed-export"
)

// Diagnostic is a single recoverable error attached to a source span.
type Diagnostic struct {
	Kind    Kind
	Span    jsast.Span
	Message string
}

// Handle is the sink the pass reports diagnostics through. It mirrors
// the host's structSpanErr(span, message).emit() contract.
type Handle interface {
	Emit(d Diagnostic)
}

// Collector accumulates diagnostics in emission order, which is
// deterministic because the pass only ever emits diagnostics as it
// walks the AST in source order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Emit appends d to the collected list.
func (c *Collector) Emit(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// New builds a Diagnostic with a printf-style message.
func New(kind Kind, span jsast.Span, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// LoggingHandle wraps another Handle, mirroring every emitted
// Diagnostic to a structured logger at debug level before forwarding
// it. Used by the transform to leave a trace of every diagnosed
// misuse alongside the diagnostics returned to the caller.
type LoggingHandle struct {
	Inner  Handle
	Logger *zap.SugaredLogger
}

// NewLoggingHandle builds a LoggingHandle. A nil logger is replaced by
// a no-op one so callers can pass zap.NewNop().Sugar() in tests.
func NewLoggingHandle(inner Handle, logger *zap.SugaredLogger) *LoggingHandle {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LoggingHandle{Inner: inner, Logger: logger}
}

// Emit logs d then forwards it to Inner.
func (h *LoggingHandle) Emit(d Diagnostic) {
	h.Logger.Debugw("diagnostic",
		"kind", string(d.Kind),
		"span_start", d.Span.Start,
		"span_end", d.Span.End,
		"message", d.Message,
	)
	h.Inner.Emit(d)
}
