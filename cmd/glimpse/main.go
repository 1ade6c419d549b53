// Command glimpse is a terminal client for the Glimpse social feed: it wires
// the gateway, feed pagination and optimistic toggles against the configured
// backing services.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"glimpse/internal/bootstrap"
	"glimpse/internal/config"
	"glimpse/internal/feed"
	"glimpse/internal/gateway"
	"glimpse/internal/identity"
	"glimpse/internal/querycache"
	"glimpse/internal/seed"
	"glimpse/internal/session"
	"glimpse/internal/store"
	"glimpse/internal/toggle"
)

func main() {
	var (
		cmd      = flag.String("cmd", "feed", "one of: register, feed, like, save, seed")
		email    = flag.String("email", "", "account email (register, like, save)")
		password = flag.String("password", "", "account password (register, like, save)")
		username = flag.String("username", "", "username (register)")
		fullName = flag.String("name", "", "full name (register)")
		postID   = flag.Uint("post", 0, "post id (like, save)")
		users    = flag.Int("users", 5, "users to create (seed)")
		posts    = flag.Int("posts", 6, "posts per user (seed)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	storage, err := bootstrap.BuildStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	provider := identity.NewLocalProvider(db, cfg.JWTSecret)
	sessions := session.NewManager(provider)
	defer sessions.Close()

	coordinator := querycache.NewCoordinator(querycache.New())
	gw := gateway.New(store.New(db), provider, storage, coordinator, cfg.PageSize)

	ctx := context.Background()

	switch *cmd {
	case "register":
		res := gw.Register(ctx, gateway.RegisterInput{
			Username: *username,
			FullName: *fullName,
			Email:    *email,
			Password: *password,
		})
		if !res.Success {
			log.Fatalf("register failed: %s", res.Message)
		}
		fmt.Printf("registered user %d (%s)\n", res.Data.ID, res.Data.Username)

	case "seed":
		if err := seed.NewFactory(db).Run(*users, *posts); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Printf("seeded %d users with %d posts each (password %q)\n", *users, *posts, seed.DefaultPassword)

	case "feed":
		printFeed(ctx, gw, coordinator)

	case "like", "save":
		if *postID == 0 {
			log.Fatal("-post is required")
		}
		login := gw.Login(ctx, gateway.LoginInput{Email: *email, Password: *password})
		if !login.Success {
			log.Fatalf("login failed: %s", login.Message)
		}
		runToggle(ctx, gw, sessions, *cmd, uint(*postID))

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printFeed(ctx context.Context, gw *gateway.Gateway, coordinator *querycache.Coordinator) {
	engine := feed.New(gw, coordinator.Cache())
	for engine.HasNextPage() {
		engine.RequestNextPage(ctx)
		if engine.Status() == feed.StatusErrored {
			log.Fatalf("feed failed: %v", engine.Err())
		}
	}
	for _, post := range engine.Posts() {
		fmt.Printf("#%-4d @%-20s %4d likes  %s\n",
			post.ID, post.User.Username, len(post.Likes), post.Caption)
	}
}

func runToggle(ctx context.Context, gw *gateway.Gateway, sessions *session.Manager, kind string, postID uint) {
	ops := toggle.RemoteOps{
		Kind: "like",
		Activate: func(ctx context.Context, entityID, userID uint) (bool, string) {
			res := gw.LikePost(ctx, entityID, userID)
			return res.Success, res.Message
		},
		Deactivate: func(ctx context.Context, entityID, userID uint) (bool, string) {
			res := gw.UnlikePost(ctx, entityID, userID)
			return res.Success, res.Message
		},
	}
	if kind == "save" {
		ops = toggle.RemoteOps{
			Kind: "save",
			Activate: func(ctx context.Context, entityID, userID uint) (bool, string) {
				res := gw.SavePost(ctx, entityID, userID)
				return res.Success, res.Message
			},
			Deactivate: func(ctx context.Context, entityID, userID uint) (bool, string) {
				res := gw.UnsavePost(ctx, entityID, userID)
				return res.Success, res.Message
			},
		}
	}

	t := toggle.New(ops)
	t.Trigger(ctx, postID, sessions.UserID())
	state := t.State(postID)
	fmt.Printf("%s post %d: active=%v\n", kind, postID, state.Active)
}
