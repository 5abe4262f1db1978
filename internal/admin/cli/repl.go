package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Sweep(ctx context.Context) error
	Revoke(ctx context.Context) error
}

const helpText = "Available commands: register, verify, sweep, revoke, help, exit"

var errUnknownCommand = errors.New("unknown command")

// runCommand executes a single command and returns its failure.
func runCommand(ctx context.Context, a execIface, cmd string) error {
	switch cmd {
	case "help":
		printlnFn(helpText)
		return nil
	case "register":
		return a.Register(ctx)
	case "verify":
		return a.Verify(ctx)
	case "sweep":
		return a.Sweep(ctx)
	case "revoke":
		return a.Revoke(ctx)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// dispatch runs one console command and prints its failure. It reports
// false when the command ends the session.
func dispatch(ctx context.Context, a execIface, cmd string) bool {
	if cmd == "exit" || cmd == "quit" {
		printlnFn("Bye!")
		return false
	}

	err := runCommand(ctx, a, cmd)
	switch {
	case errors.Is(err, errUnknownCommand):
		printlnFn("Unknown command:", cmd)
	case err != nil:
		printlnFn("Error:", err)
	}
	return true
}

// runREPL reads commands from reader until EOF, "exit" or "quit". Command
// prompts share reader, so a command's own input is consumed in order.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn("rk-admin> ")

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) > 0 {
			if !dispatch(ctx, a, parts[0]) {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				printlnFn("Error:", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
