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
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. It exits on
// scanner EOF or when the user types "exit" or "quit".
//
//	help             show available commands
//	register         create an account
//	verify           confirm the email address
//	login            sign in
//	exit | quit      leave the program
//
// Command errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("us %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		if !dispatch(ctx, a, parts[0]) {
			return
		}
	}
}

// dispatch runs one command and reports whether the loop should continue.
func dispatch(ctx context.Context, a execIface, cmd string) bool {
	switch cmd {
	case "help":
		printlnFn("Available commands: register, verify, login, exit")
	case "register":
		_ = a.Register(ctx)
	case "verify":
		_ = a.Verify(ctx)
	case "login":
		_ = a.Login(ctx)
	case "exit", "quit":
		printlnFn("Bye!")
		return false
	default:
		printlnFn("Unknown command:", cmd)
	}
	return true
}
