// Command migrate applies and reverts schema revisions.
//
//	migrate upgrade [target]   apply pending revisions up to target (default head)
//	migrate downgrade <target> revert revisions built on target ("base" for all)
//	migrate apply <revision>   apply exactly one revision
//	migrate revert <revision>  revert exactly one revision
//	migrate current            print the applied revisions at the top of each branch
//	migrate heads              print the newest revision of each branch
//	migrate history            print every revision, oldest first
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mytheresa/category-service/app/config"
	"github.com/mytheresa/category-service/app/database"
	"github.com/mytheresa/category-service/migrations"
	"github.com/mytheresa/category-service/migrations/versions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	envFile := fs.String("env-file", "", "load environment from this file instead of .env")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: migrate [-env-file path] upgrade|downgrade|apply|revert|current|heads|history [revision]")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	if *envFile != "" {
		config.LoadDotEnv(*envFile)
	} else {
		config.LoadDotEnv()
	}
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	chain, err := versions.Chain()
	if err != nil {
		log.Fatalf("migrations: %v", err)
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close(db)

	if err := run(ctx, migrations.NewRunner(db, chain), os.Stdout, fs.Args()); err != nil {
		if migrations.IsStateError(err) {
			log.Printf("migration state error: %v", err)
		} else {
			log.Printf("migrate: %v", err)
		}
		database.Close(db)
		os.Exit(1)
	}
}

func run(ctx context.Context, runner *migrations.Runner, out io.Writer, args []string) error {
	cmd, rest := args[0], args[1:]
	arg := func(def string) (string, error) {
		if len(rest) > 0 {
			return rest[0], nil
		}
		if def == "" {
			return "", fmt.Errorf("%s needs a revision argument", cmd)
		}
		return def, nil
	}

	switch cmd {
	case "upgrade":
		target, _ := arg(migrations.TargetHead)
		done, err := runner.Upgrade(ctx, target)
		printRevisions(out, "applied", done)
		return err
	case "downgrade":
		target, err := arg("")
		if err != nil {
			return err
		}
		done, err := runner.Downgrade(ctx, target)
		printRevisions(out, "reverted", done)
		return err
	case "apply":
		rev, err := arg("")
		if err != nil {
			return err
		}
		return runner.Apply(ctx, rev)
	case "revert":
		rev, err := arg("")
		if err != nil {
			return err
		}
		return runner.Revert(ctx, rev)
	case "current":
		current, err := runner.Current(ctx)
		if err != nil {
			return err
		}
		for _, rev := range current {
			fmt.Fprintln(out, rev)
		}
		return nil
	case "heads":
		for _, rev := range runner.Chain().Heads() {
			fmt.Fprintln(out, rev)
		}
		return nil
	case "history":
		applied, err := runner.Applied(ctx)
		if err != nil {
			return err
		}
		isApplied := make(map[string]bool, len(applied))
		for _, rev := range applied {
			isApplied[rev] = true
		}
		for _, u := range runner.Chain().History() {
			down := u.DownRevision
			if down == "" {
				down = "<base>"
			}
			mark := " "
			if isApplied[u.Revision] {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s -> %s, %s\n", mark, down, u.Revision, u.Message)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printRevisions(out io.Writer, verb string, revs []string) {
	if len(revs) == 0 {
		fmt.Fprintf(out, "nothing %s\n", verb)
		return
	}
	for _, rev := range revs {
		fmt.Fprintf(out, "%s %s\n", verb, rev)
	}
}
