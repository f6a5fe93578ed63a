package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	out := FormatError("could not parse phone number")
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "could not parse phone number")
	assert.NotContains(t, out, "Try:")
}

func TestFormatErrorWithSuggestions(t *testing.T) {
	out := FormatError("invalid country calling code",
		`numplan parse --region NZ "03 331 6005"`,
		"numplan config set engine.default_region NZ",
	)
	assert.Contains(t, out, "Try:")
	assert.Contains(t, out, "numplan parse --region NZ")
	assert.Contains(t, out, "numplan config set engine.default_region NZ")
	assert.Contains(t, out, SymbolArrow)
}

func TestStepSpinnerPlainMode(t *testing.T) {
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)

	sp.Start("Loading numbering plans")
	sp.Done()
	sp.Start("Starting server")
	sp.Fail()

	out := buf.String()
	assert.Contains(t, out, "Loading numbering plans")
	assert.Contains(t, out, "Starting server")
	assert.Equal(t, 1, strings.Count(out, SymbolCheck))
	assert.Equal(t, 1, strings.Count(out, SymbolCross))
}

func TestStepSpinnerSafeWithoutStart(t *testing.T) {
	// Finishing or stopping a step that never started must not panic.
	var buf bytes.Buffer
	sp := NewStepSpinner(&buf, true)
	sp.Stop()
	sp.Done()
	sp.Fail()
}

func TestColorEnabledRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled())
	assert.False(t, ColorEnabledFd(os.Stderr.Fd()))

	// Presence disables color even when the value is empty.
	t.Setenv("NO_COLOR", "")
	assert.False(t, ColorEnabled())
}

func TestForcedRendererProducesANSI(t *testing.T) {
	r := ForcedRenderer()
	require.NotNil(t, r)
	// Same instance every call.
	assert.Same(t, r, ForcedRenderer())

	out := r.NewStyle().Bold(true).Render("numplan")
	assert.Contains(t, out, "numplan")
	// Unlike the default renderer, the forced one emits escapes even with no
	// TTY attached, as in tests.
	assert.Contains(t, out, "\x1b[")
}

func TestBrandAndSymbols(t *testing.T) {
	assert.Equal(t, "\U0001F4DE", BrandEmoji)
	for _, sym := range []string{SymbolCheck, SymbolCross, SymbolWarning, SymbolDot, SymbolArrow} {
		assert.NotEmpty(t, sym)
	}
}

func TestStylesPreserveText(t *testing.T) {
	styles := map[string]func(...string) string{
		"bold":    StyleBold.Render,
		"dim":     StyleDim.Render,
		"success": StyleSuccess.Render,
		"warning": StyleWarning.Render,
		"error":   StyleError.Render,
		"hint":    StyleHint.Render,
		"code":    StyleCode.Render,
	}
	for name, render := range styles {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, render("03-331 6005"), "03-331 6005")
		})
	}
}
