package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected boolean flag, or exits if the flag is missing
// (a programmer error, so treated as fatal).
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if the flag is missing.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// wrapWidth returns the terminal width to wrap long report lines to,
// falling back to 80 columns when stdout is not a terminal (e.g. output is
// piped to a file) or the reported size is unusable.
func wrapWidth() int {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		return 80
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}

	return w
}

// wrapList renders a comma-separated list, inserting a line break (indented
// to align under the label) whenever the next item would overrun the
// terminal width, so an ALI dump's with-list never runs off-screen on a
// narrow terminal.
func wrapList(label string, items []string) string {
	if len(items) == 0 {
		return label + ": (none)"
	}

	indent := strings.Repeat(" ", len(label)+2)
	width := wrapWidth()

	var b strings.Builder

	b.WriteString(label)
	b.WriteString(": ")

	col := len(label) + 2

	for i, item := range items {
		piece := item
		if i < len(items)-1 {
			piece += ", "
		}

		if col+len(piece) > width && col > len(indent) {
			b.WriteString("\n")
			b.WriteString(indent)
			col = len(indent)
		}

		b.WriteString(piece)
		col += len(piece)
	}

	return b.String()
}
