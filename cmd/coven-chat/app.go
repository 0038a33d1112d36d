// ABOUTME: Wires config, logger, store, fault log, directory and send pipelines for the commands
// ABOUTME: Flag overrides are applied on top of the loaded config file

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/2389/coven-chat/internal/api"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/directory"
	"github.com/2389/coven-chat/internal/faults"
	"github.com/2389/coven-chat/internal/send"
	"github.com/2389/coven-chat/internal/store"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	faults *faults.Log
	client *api.Client
	dir    *directory.Directory
	sender *send.Dispatcher
}

// loadConfig reads the config file named by --config (or the default path)
// and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath())
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.API.Token = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	client := api.New(cfg.API.BaseURL,
		api.WithToken(cfg.API.Token),
		api.WithLogger(logger),
	)
	st := store.New(logger)
	fl := faults.New(cfg.Faults.TTL, cfg.Faults.MaxEntries, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		faults: fl,
		client: client,
		dir:    directory.New(st, client, logger),
		sender: send.New(send.Deps{Store: st, Transport: client, Faults: fl, Logger: logger}),
	}
}

func (a *app) Close() {
	a.faults.Close()
}
