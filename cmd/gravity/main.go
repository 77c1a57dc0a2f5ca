package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"gravity/cmd/internal/app"
)

func main() {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gravity:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return app.Run()
	}

	switch args[0] {
	case "serve":
		return app.Run()

	case "migrate":
		cfg := app.LoadConfig()
		log := app.NewLogger(cfg.LogLevel, cfg.LogPretty)
		dir := "up"
		if len(args) > 1 {
			dir = args[1]
		}
		switch dir {
		case "up":
			return app.MigrateUp(cfg.DatabaseURL, log)
		case "down":
			return app.MigrateDown(cfg.DatabaseURL, log)
		default:
			return fmt.Errorf("unknown migrate direction %q (want up or down)", dir)
		}

	case "create-admin":
		fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
		name := fs.String("name", "", "admin display name")
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		cfg := app.LoadConfig()
		log := app.NewLogger(cfg.LogLevel, cfg.LogPretty)
		return app.CreateAdmin(context.Background(), cfg, log, *name, *email, *password)

	default:
		return fmt.Errorf("unknown command %q (want serve, migrate, or create-admin)", args[0])
	}
}
