package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a recording stub.
type execIface interface {
	hasAccount() bool
	Accounts(ctx context.Context) error
	Use(ctx context.Context, ref string) error
	New(ctx context.Context) error
	Draft(ctx context.Context) error
	Discard(ctx context.Context) error
	Attach(ctx context.Context, path string) error
	Publish(ctx context.Context) error
	List(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Page(ctx context.Context, n int) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, ref string) error
	Comment(ctx context.Context, ref string) error
	Like(ctx context.Context, ref string) error
	Mine(ctx context.Context) error
	Download(ctx context.Context, ref string, n int) error
}

const (
	helpNoAccount = "Available commands: accounts, use <addr|#>, list, next, prev, page <n>, refresh, show <id|#>, download <id|#> <n>, draft, new, attach <path>, discard, help, exit"
	helpAccount   = "Available commands: accounts, use <addr|#>, list, next, prev, page <n>, refresh, show <id|#>, download <id|#> <n>, mine, new, draft, attach <path>, discard, publish, comment <id|#>, like <id|#>, help, exit"
)

// readLine returns the next input line without its line ending. ok is false
// once the input is exhausted.
func readLine(r *bufio.Reader) (line string, ok bool) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// runREPL reads commands from r and dispatches them to a until the input ends
// or the user types "exit" or "quit".
//
// Commands that take arguments print their usage when called without them.
// Errors returned by handlers are not printed here; handlers report their
// own failures so the loop stays focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("blog %s> ", statusFn()))
		line, ok := readLine(r)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.hasAccount() {
				printlnFn(helpAccount)
			} else {
				printlnFn(helpNoAccount)
			}

		case "accounts":
			_ = a.Accounts(ctx)

		case "use":
			if len(args) != 1 {
				printlnFn("Usage: use <address|#>")
				continue
			}
			_ = a.Use(ctx, args[0])

		case "new":
			_ = a.New(ctx)

		case "draft":
			_ = a.Draft(ctx)

		case "discard":
			_ = a.Discard(ctx)

		case "attach":
			if len(args) == 0 {
				printlnFn("Usage: attach <path>")
				continue
			}
			_ = a.Attach(ctx, strings.Join(args, " "))

		case "publish":
			_ = a.Publish(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "n", "next":
			_ = a.Next(ctx)

		case "p", "prev":
			_ = a.Prev(ctx)

		case "page":
			n, err := pageArg(args)
			if err != nil {
				printlnFn("Usage: page <n>")
				continue
			}
			_ = a.Page(ctx, n)

		case "refresh":
			_ = a.Refresh(ctx)

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id|#>")
				continue
			}
			_ = a.Show(ctx, args[0])

		case "comment":
			if len(args) != 1 {
				printlnFn("Usage: comment <id|#>")
				continue
			}
			_ = a.Comment(ctx, args[0])

		case "like":
			if len(args) != 1 {
				printlnFn("Usage: like <id|#>")
				continue
			}
			_ = a.Like(ctx, args[0])

		case "mine":
			_ = a.Mine(ctx)

		case "download":
			if len(args) != 2 {
				printlnFn("Usage: download <id|#> <asset #>")
				continue
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				printlnFn("Usage: download <id|#> <asset #>")
				continue
			}
			_ = a.Download(ctx, args[0], n)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func pageArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("page number required")
	}
	return strconv.Atoi(args[0])
}

func (a *App) getStatus() string {
	s := ""
	if a.account != "" {
		s = shortAddr(a.account) + " "
	}
	s += string(a.Mode())
	if a.draft != nil {
		s += " *draft"
	}
	return fmt.Sprintf("(%s)", strings.TrimSpace(s))
}

// Root restores the saved draft, starts the wallet watcher and runs the REPL.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the suiblog CLI (type 'help' for commands)")

	if err := a.restoreDraft(ctx); err != nil {
		a.log.Warn(ctx, "restore draft", "error", err)
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
