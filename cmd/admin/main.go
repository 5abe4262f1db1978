package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/admin/cli"
	"github.com/dmitrijs2005/recipekeeper/internal/buildinfo"
	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/joho/godotenv"
)

// commandFlag runs a single console command and exits, e.g. "-run sweep"
// from cron.
func commandFlag() string {
	args := flagx.FilterArgs(os.Args[1:], []string{"-run"})

	flags := flag.NewFlagSet("admin", flag.ContinueOnError)
	cmd := flags.String("run", "", "run one command (register, verify, sweep, revoke) and exit")
	if err := flags.Parse(args); err != nil {
		log.Fatalf("%v", err)
	}
	return *cmd
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("error loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, commandFlag()); err != nil {
		log.Fatalf("%v", err)
	}

}
