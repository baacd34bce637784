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
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context)
	Login(ctx context.Context)
	CheckUsername(ctx context.Context)
	ResetPassword(ctx context.Context)
	ShowSeed(ctx context.Context)
	RecoverSeed(ctx context.Context)
	ChangePassword(ctx context.Context)
	Ping(ctx context.Context)
	Logout(ctx context.Context)
}

// runREPL starts a simple read-eval-print loop for the walletctl CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Command handlers report their own errors; the loop stays resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("walletctl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: seed, recover, changepw, ping, logout, exit")
			} else {
				printlnFn("Available commands: register, login, checkuser, resetpw, ping, exit")
			}
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "checkuser":
			a.CheckUsername(ctx)
		case "resetpw":
			a.ResetPassword(ctx)
		case "seed":
			a.ShowSeed(ctx)
		case "recover":
			a.RecoverSeed(ctx)
		case "changepw":
			a.ChangePassword(ctx)
		case "ping":
			a.Ping(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
