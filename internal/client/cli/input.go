package cli

import (
	"os"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal on stdout.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
