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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	AddGig(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	EditGig(ctx context.Context, id string) error
	DeleteGig(ctx context.Context, id string) error
	AddVenue(ctx context.Context) error
	Venues(ctx context.Context) error
	AddPerson(ctx context.Context) error
	People(ctx context.Context) error
	Stats(ctx context.Context) error
	Pints(ctx context.Context) error
	Sync(ctx context.Context) error
	AttachPhoto(ctx context.Context, id string, path string) error
	SavePhotos(ctx context.Context, id string) error
}

// runREPL starts a simple read-eval-print loop for the giglog CLI.
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
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - add            — record a gig
//	  - list           — list gigs, newest first
//	  - show <id>      — show a single gig
//	  - edit <id>      — edit a gig
//	  - delete <id>    — delete a gig
//	  - addvenue       — add a venue to the library
//	  - venues         — list venues
//	  - addperson      — add a person to the library
//	  - people         — list people
//	  - photo <id> <file> — attach a photo to a gig
//	  - photos <id>    — download a gig's photos
//	  - stats          — diary summary
//	  - pints          — pint analytics
//	  - sync           — synchronize with the server
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are logged by the handlers
// themselves. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("giglog (%s) > ", statusFn()))
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
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, show <id>, edit <id>, delete <id>, addvenue, venues, addperson, people, photo <id> <file>, photos <id>, stats, pints, sync, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "add":
			_ = a.AddGig(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = a.Show(ctx, args[0])

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditGig(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.DeleteGig(ctx, args[0])

		case "addvenue":
			_ = a.AddVenue(ctx)

		case "venues":
			_ = a.Venues(ctx)

		case "addperson":
			_ = a.AddPerson(ctx)

		case "people":
			_ = a.People(ctx)

		case "photo":
			if len(args) < 2 {
				printlnFn("Usage: photo <gig-id> <file>")
				continue
			}
			_ = a.AttachPhoto(ctx, args[0], args[1])

		case "photos":
			if len(args) == 0 {
				printlnFn("Usage: photos <gig-id>")
				continue
			}
			_ = a.SavePhotos(ctx, args[0])

		case "stats":
			_ = a.Stats(ctx)

		case "pints":
			_ = a.Pints(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
