package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/goliatone/go-stepform/internal/config"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg config.Config, args []string) error
}

var commands = []command{
	{name: "list", summary: "list the forms in the catalog", run: runList},
	{name: "fill", summary: "fill in and submit a form from the terminal", run: runFill},
	{name: "render", summary: "render a form step as HTML or JSON", run: runRender},
	{name: "serve", summary: "serve the catalog forms over HTTP", run: runServe},
	{name: "lint", summary: "check definition files for errors", run: runLint},
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("stepform: ")

	envFile := flag.String("env", "", "env file to load (default .env when present)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(ctx, cfg, args); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [-env file] <command> [flags]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-8s %s\n", cmd.name, cmd.summary)
	}
}
