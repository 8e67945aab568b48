package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Series(ctx context.Context) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	SetMode(ctx context.Context, args []string) error
	Image(ctx context.Context, args []string) error
	Prefetch(ctx context.Context) error
	Cache(ctx context.Context) error
	Purge(ctx context.Context) error
}

const helpText = "Available commands: (l)ist, series, refresh, show <id>, (n)ext, (p)rev, " +
	"mode flat|grouped, image <index> [path], prefetch, cache, purge, exit"

// runREPL starts a simple read–eval–print loop for the docarchive viewer.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	help                   show available commands
//	list | l               list documents in list order
//	series                 list documents bucketed by series
//	refresh                refetch the document list
//	show <id>              show one document
//	next | n, prev | p     step to the neighbouring document
//	mode flat|grouped      switch how next/prev walk
//	image <index> [path]   save an image, or write it to a piped stdout
//	prefetch               cache every image of the current document
//	cache                  show what the local cache holds
//	purge                  drop the local cache
//	exit | quit            leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("docs %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "list":
			_ = a.List(ctx)

		case "series":
			_ = a.Series(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "show":
			_ = a.Show(ctx, args)

		case "n", "next":
			_ = a.Next(ctx)

		case "p", "prev":
			_ = a.Prev(ctx)

		case "mode":
			_ = a.SetMode(ctx, args)

		case "image":
			_ = a.Image(ctx, args)

		case "prefetch":
			_ = a.Prefetch(ctx)

		case "cache":
			_ = a.Cache(ctx)

		case "purge":
			_ = a.Purge(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
