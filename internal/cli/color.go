package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/numplan/numplan/internal/cli/ui"
)

// colorEnabled reports whether stderr should receive colored output.
// Respects the NO_COLOR environment variable (https://no-color.org/).
func colorEnabled() bool {
	return ui.ColorEnabled()
}

// colorEnabledFd reports whether the given file descriptor should receive
// colored output. Respects NO_COLOR.
func colorEnabledFd(fd uintptr) bool {
	return ui.ColorEnabledFd(fd)
}

// paint renders text through the forced-ANSI renderer when color is on. The
// caller already made the TTY decision through the color bool, so the
// renderer must not second-guess it by sniffing the terminal again.
func paint(text string, color bool, build func(lipgloss.Style) lipgloss.Style) string {
	if !color {
		return text
	}
	return build(ui.ForcedRenderer().NewStyle()).Render(text)
}

func bold(text string, color bool) string {
	return paint(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Bold(true) })
}

func dim(text string, color bool) string {
	return paint(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Faint(true) })
}

func cyan(text string, color bool) string {
	return paint(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Foreground(ui.ColorCyan) })
}

func green(text string, color bool) string {
	return paint(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Foreground(ui.ColorGreen) })
}

func boldCyan(text string, color bool) string {
	return paint(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Bold(true).Foreground(ui.ColorCyan) })
}
