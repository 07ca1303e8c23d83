package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/jsast"
)

func TestConsoleOutputWritesCatalogueAndDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput().WithWriter(&buf).WithNoColor(true)

	diags := []diagnostics.Diagnostic{
		diagnostics.New(diagnostics.KindNotAsync, jsast.Span{Start: 1, End: 5}, "Server actions must be async functions"),
	}
	catalogue := map[string]string{"abc123": "f"}

	err := out.Write(diags, catalogue, Stats{Filename: "a.js", ActionCount: 1})
	assert.NoError(t, err)

	s := buf.String()
	assert.Contains(t, s, "a.js")
	assert.Contains(t, s, "not-async")
	assert.Contains(t, s, "abc123")
	assert.Contains(t, s, "f")
}

func TestConsoleOutputNoDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput().WithWriter(&buf).WithNoColor(true)

	err := out.Write(nil, nil, Stats{Filename: "a.js"})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No diagnostics.")
}

func TestSummaryOutputWrite(t *testing.T) {
	var buf bytes.Buffer
	out := NewSummaryOutput().WithWriter(&buf)

	err := out.Write(nil, map[string]string{"id": "f"}, Stats{Filename: "a.js", ActionCount: 1})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "a.js")
	assert.Contains(t, buf.String(), "1 catalogued actions")
}
