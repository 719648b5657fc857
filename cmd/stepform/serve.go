package main

import (
	"context"
	"flag"
	"log"

	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/internal/server"
	"github.com/goliatone/go-stepform/pkg/client"
)

func runServe(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := cfg.Catalog()
	if err != nil {
		return err
	}
	serverCfg := server.Config{Catalog: store}
	if cfg.APIURL != "" {
		api, err := client.New(client.Config{BaseURL: cfg.APIURL})
		if err != nil {
			return err
		}
		serverCfg.Submitter = api
		serverCfg.Options = api
	}
	if cfg.UploadURL != "" {
		uploader, err := client.NewUploader(client.UploaderConfig{URL: cfg.UploadURL, Preset: cfg.UploadPreset})
		if err != nil {
			return err
		}
		serverCfg.Uploader = uploader
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return err
	}
	log.Printf("config: %s", cfg)
	return server.Run(ctx, *addr, srv.Handler())
}
