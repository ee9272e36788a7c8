package tui

import (
	_ "embed"
	"fmt"
	"io"
)

//go:embed guide.md
var guide string

// Guide returns the usage guide as markdown.
func Guide() string {
	return guide
}

// PrintGuide renders the guide through glamour on terminals and writes the
// raw markdown otherwise.
func PrintGuide(w io.Writer) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, guide)
		return err
	}
	out, err := NewRenderer(Width(w))(guide)
	if err != nil {
		return fmt.Errorf("failed to render guide: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
