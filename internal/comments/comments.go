// Package comments models the comment-attachment collaborator the
// transform consumes: a place to leave the leading magic catalogue
// comment without owning source printing itself. It mirrors the
// diagnostics package's handle/collector split, since both are
// thread-local sinks the pass writes into during a single traversal.
package comments

import (
	"encoding/json"
	"sort"

	"github.com/go-rsc/server-actions/internal/jsast"
)

// Comment is one attached leading comment.
type Comment struct {
	Pos   jsast.Span
	Text  string
	Block bool
}

// Handle is the external collaborator the pass attaches comments
// through. A real printer implements this against its own source
// buffer; Collector is an in-memory stand-in good enough for tests and
// the fixture-driven CLI.
type Handle interface {
	AttachLeading(pos jsast.Span, text string, block bool)
}

// Collector accumulates attached comments in attachment order.
type Collector struct {
	Leading []Comment
}

// AttachLeading implements Handle.
func (c *Collector) AttachLeading(pos jsast.Span, text string, block bool) {
	c.Leading = append(c.Leading, Comment{Pos: pos, Text: text, Block: block})
}

const magicPrefix = "__next_internal_action_entry_do_not_use__"

// FormatCatalogue renders the magic-comment body (without the /* */
// delimiters) for the given actionId→name entries. The JSON object's
// keys come out in lexicographic order because encoding/json sorts
// map[string]string keys, which coincides with the required
// sorted-by-id order since action ids are themselves hex strings.
func FormatCatalogue(idToName map[string]string) (string, error) {
	raw, err := json.Marshal(idToName)
	if err != nil {
		return "", err
	}
	return " " + magicPrefix + " " + string(raw) + " ", nil
}

// SortedEntries returns idToName's entries sorted by id, for callers
// that need the ordered pairs rather than the rendered JSON (e.g. to
// walk the catalogue deterministically in tests or logs).
func SortedEntries(idToName map[string]string) []IDName {
	out := make([]IDName, 0, len(idToName))
	for id, name := range idToName {
		out = append(out, IDName{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDName is one catalogue entry.
type IDName struct {
	ID   string
	Name string
}

// AttachCatalogue attaches the magic catalogue comment at pos, the
// module's first byte position, when there is at least one entry.
func AttachCatalogue(h Handle, pos jsast.Span, idToName map[string]string) error {
	if len(idToName) == 0 {
		return nil
	}
	text, err := FormatCatalogue(idToName)
	if err != nil {
		return err
	}
	h.AttachLeading(pos, text, true)
	return nil
}
