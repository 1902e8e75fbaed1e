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

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	isSignedIn() bool
	isAdmin() bool
	handleNavigation()

	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error

	SetTab(ctx context.Context, arg string) error
	SetView(ctx context.Context, arg string) error
	Show(ctx context.Context) error
	Gallery(ctx context.Context) error
	Collections(ctx context.Context) error
	Open(ctx context.Context, arg string) error
	Unlock(ctx context.Context) error
	Leave(ctx context.Context) error
	Purchases(ctx context.Context) error
	Refresh(ctx context.Context) error

	Download(ctx context.Context, arg string) error
	Watermark(ctx context.Context, arg string) error
	Premium(ctx context.Context, arg string) error
	Original(ctx context.Context, arg string) error
	DownloadCollection(ctx context.Context) error

	Requests(ctx context.Context) error
	Approve(ctx context.Context, arg string) error
	Deny(ctx context.Context, arg string) error
	SetGlobalPin(ctx context.Context) error
	NewCollection(ctx context.Context) error
	ChangeCollectionPin(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	DeleteImage(ctx context.Context, arg string) error
	Users(ctx context.Context) error
	DeleteUser(ctx context.Context, arg string) error
}

const (
	helpGuest = "Available commands: signin, signup, gallery, download <n>, tab <gallery|hire>, exit"
	helpUser  = "Available commands: tab <profile|gallery|purchases|hire>, view <gallery|collections>, show,\n" +
		"  gallery, collections, open <n>, unlock, leave, wm <n>, premium <n>, original <n>,\n" +
		"  dlcollection, purchases, refresh, signout, exit"
	helpAdmin = "Admin commands: requests, approve <n>, deny <n>, setpin, newcollection, collectionpin,\n" +
		"  upload <file>, rmimage <n>, users, rmuser <n>"
)

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Handlers report their own failures, so returned errors
// are dropped here. Pending navigation from the session is applied before
// every prompt.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.handleNavigation()

		printlnFn(fmt.Sprintf("portal %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn(helpUser)
				printlnFn(helpAdmin)
			case a.isSignedIn():
				printlnFn(helpUser)
			default:
				printlnFn(helpGuest)
			}

		case "signin", "login":
			_ = a.SignIn(ctx)
		case "signup", "register":
			_ = a.SignUp(ctx)
		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "tab":
			_ = a.SetTab(ctx, arg)
		case "view":
			_ = a.SetView(ctx, arg)
		case "show":
			_ = a.Show(ctx)
		case "gallery":
			_ = a.Gallery(ctx)
		case "collections":
			_ = a.Collections(ctx)
		case "open":
			_ = a.Open(ctx, arg)
		case "unlock":
			_ = a.Unlock(ctx)
		case "leave":
			_ = a.Leave(ctx)
		case "purchases":
			_ = a.Purchases(ctx)
		case "refresh":
			_ = a.Refresh(ctx)

		case "download":
			_ = a.Download(ctx, arg)
		case "wm":
			_ = a.Watermark(ctx, arg)
		case "premium":
			_ = a.Premium(ctx, arg)
		case "original":
			_ = a.Original(ctx, arg)
		case "dlcollection":
			_ = a.DownloadCollection(ctx)

		case "requests":
			_ = a.Requests(ctx)
		case "approve":
			_ = a.Approve(ctx, arg)
		case "deny":
			_ = a.Deny(ctx, arg)
		case "setpin":
			_ = a.SetGlobalPin(ctx)
		case "newcollection":
			_ = a.NewCollection(ctx)
		case "collectionpin":
			_ = a.ChangeCollectionPin(ctx)
		case "upload":
			_ = a.Upload(ctx, arg)
		case "rmimage":
			_ = a.DeleteImage(ctx, arg)
		case "users":
			_ = a.Users(ctx)
		case "rmuser":
			_ = a.DeleteUser(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
