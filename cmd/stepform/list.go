package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goliatone/go-stepform/internal/config"
)

func runList(_ context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := cfg.Catalog()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tSTEPS\tMODE\tFEE")
	for _, def := range store.List() {
		fee := def.Submission.Amount
		if fee == "" {
			fee = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", def.Slug, def.Title, len(def.Steps), def.Submission.Mode, fee)
	}
	return tw.Flush()
}
