// Command shopctl is a CLI client for the FreshCart shop backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/freshcart/shopkit/api"
	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/internal/config"
	"github.com/freshcart/shopkit/internal/lifecycle"
	"github.com/freshcart/shopkit/pkg/logger"
	boltstore "github.com/freshcart/shopkit/repository/bolt"
	cartUC "github.com/freshcart/shopkit/usecase/cart"
	sessionUC "github.com/freshcart/shopkit/usecase/session"
)

func usage() {
	fmt.Fprintf(os.Stderr, `shopctl
Usage:
  shopctl <cmd> [args]

Commands:
  login      -u <username> -p <password>
  signup     -name <full name> -email <email> -p <password>
  logout
  whoami
  categories
  products   [-category <id>]
  cart       show | add -id <productId> [-qty n] | set -id <productId> -qty n | rm -id <productId> | clear
  checkout
  orders
  profile    show | set [-first s] [-last s] [-phone s] [-address s]
  chat       history | send -m <text>
  upload     -file <path>
  health
`)
	os.Exit(2)
}

type app struct {
	session *sessionUC.Manager
	cart    *cartUC.Engine
	client  *api.Client
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(0, zapLogger)
	manager.Listen(cancel)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("shutdown error", zap.Error(err))
		}
	}()

	db, err := boltstore.Open(cfg.Store.Path)
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}
	manager.Register("store", func(context.Context) error { return db.Close() })

	credStore, err := boltstore.NewCredentialStore(db, cfg.Store.KeyPath)
	if err != nil {
		zapLogger.Fatal("failed to init credential store", zap.Error(err))
	}
	cartStore := boltstore.NewCartStore(db)

	client := api.New(api.Config{
		BaseURL:        cfg.API.BaseURL,
		RequestTimeout: cfg.API.RequestTimeout,
		MaxRetries:     uint64(cfg.API.MaxRetries),
		RetryDelay:     cfg.API.RetryDelay,
		Name:           cfg.AppName,
	}, logger.WithComponent(zapLogger, "api"))

	session := sessionUC.New(client, credStore, logger.WithComponent(zapLogger, "session"))
	client.SetTokenSource(session)
	client.OnUnauthorized(session.HandleUnauthorized)
	session.Restore()

	engine := cartUC.New(client, cartStore, logger.WithComponent(zapLogger, "cart"))

	a := &app{session: session, cart: engine, client: client}
	a.dispatch(ctx, flag.Arg(0), flag.Args()[1:])
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		need(*u != "" && *p != "", "need -u and -p")
		if err := a.session.Login(ctx, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		need(*name != "" && *email != "" && *p != "", "need -name, -email and -p")
		if err := a.session.Signup(ctx, *name, *email, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		a.session.Logout()
		fmt.Println("ok")

	case "whoami":
		cred := a.session.Current()
		if cred == nil || !a.session.Valid() {
			fmt.Println("not logged in")
			return
		}
		printJSON(map[string]any{
			"username":   cred.Username,
			"email":      cred.Email,
			"roles":      cred.Roles,
			"expires_at": cred.ExpiresAt,
		})

	case "categories":
		out, err := a.client.Categories(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		category := fs.Int("category", 0, "category id")
		_ = fs.Parse(args)
		var categoryID *int
		if *category > 0 {
			categoryID = category
		}
		out, err := a.client.Products(ctx, categoryID)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "cart":
		a.cartCmd(ctx, args)

	case "checkout":
		order, err := a.cart.Checkout(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(order)

	case "orders":
		out, err := a.client.Orders(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "profile":
		a.profileCmd(ctx, args)

	case "chat":
		a.chatCmd(ctx, args)

	case "upload":
		fs := flag.NewFlagSet("upload", flag.ExitOnError)
		file := fs.String("file", "", "image file")
		_ = fs.Parse(args)
		need(*file != "", "need -file")
		data, err := os.ReadFile(*file)
		if err != nil {
			fail(err)
		}
		out, err := a.client.UploadImage(ctx, filepath.Base(*file), data)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	case "health":
		out, err := a.client.Ping(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)

	default:
		usage()
	}
}

func (a *app) cartCmd(ctx context.Context, args []string) {
	if len(args) < 1 {
		usage()
	}
	sub := args[0]
	fs := flag.NewFlagSet("cart "+sub, flag.ExitOnError)
	id := fs.Int("id", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	_ = fs.Parse(args[1:])

	switch sub {
	case "show":
		cart := a.cart.Load()
		printJSON(map[string]any{
			"items": cart.Lines,
			"total": cart.Total,
			"count": cart.ItemCount(),
		})
	case "add":
		need(*id > 0, "need -id")
		if err := a.cart.AddItem(ctx, *id, *qty); err != nil {
			fail(err)
		}
		fmt.Println("ok")
	case "set":
		need(*id > 0, "need -id")
		a.cart.SetQuantity(*id, *qty)
		fmt.Println("ok")
	case "rm":
		need(*id > 0, "need -id")
		a.cart.Remove(*id)
		fmt.Println("ok")
	case "clear":
		a.cart.Clear()
		fmt.Println("ok")
	default:
		usage()
	}
}

func (a *app) profileCmd(ctx context.Context, args []string) {
	if len(args) < 1 {
		usage()
	}
	switch args[0] {
	case "show":
		out, err := a.client.Profile(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)
	case "set":
		fs := flag.NewFlagSet("profile set", flag.ExitOnError)
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		phone := fs.String("phone", "", "phone number")
		address := fs.String("address", "", "address")
		_ = fs.Parse(args[1:])

		profile, err := a.client.Profile(ctx)
		if err != nil {
			fail(err)
		}
		if *first != "" {
			profile.FirstName = *first
		}
		if *last != "" {
			profile.LastName = *last
		}
		if *phone != "" {
			profile.PhoneNumber = *phone
		}
		if *address != "" {
			profile.Address = *address
		}
		out, err := a.client.UpdateProfile(ctx, profile)
		if err != nil {
			fail(err)
		}
		printJSON(out)
	default:
		usage()
	}
}

func (a *app) chatCmd(ctx context.Context, args []string) {
	if len(args) < 1 {
		usage()
	}
	switch args[0] {
	case "history":
		out, err := a.client.ChatHistory(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(out)
	case "send":
		fs := flag.NewFlagSet("chat send", flag.ExitOnError)
		msg := fs.String("m", "", "message text")
		_ = fs.Parse(args[1:])
		need(*msg != "", "need -m")
		out, err := a.client.SaveChatMessage(ctx, domain.NewChatMessage(domain.ChatSenderUser, *msg))
		if err != nil {
			fail(err)
		}
		printJSON(out)
	default:
		usage()
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func need(ok bool, msg string) {
	if !ok {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, domain.UserMessage(err))
	if code := domain.CodeOf(err); code != "" {
		fmt.Fprintf(os.Stderr, "(%s: %v)\n", code, err)
	}
	os.Exit(1)
}
