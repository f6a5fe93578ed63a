package ui

import (
	"fmt"
	"strings"
)

// FormatError renders a fatal CLI error, optionally followed by suggested
// next commands. Styling degrades to plain text off a TTY.
func FormatError(msg string, suggestions ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleBoldRed.Render("Error:"), msg)

	if len(suggestions) > 0 {
		fmt.Fprintf(&b, "\n%s\n", StyleHint.Render("  Try:"))
		for _, s := range suggestions {
			fmt.Fprintf(&b, "    %s %s\n", StyleHint.Render(SymbolArrow), s)
		}
	}
	return b.String()
}
