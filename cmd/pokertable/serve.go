package main

import (
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/cmd/pokertable/shared"
	"github.com/lox/pokertable/internal/server"
)

// ServeCmd runs the tables described by an HCL file.
type ServeCmd struct {
	Config   string `short:"c" default:"pokertable.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := shared.NewLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.NewServer(addr, logger)
	svc, err := server.NewService(cfg, srv, server.WithServiceLogger(logger))
	if err != nil {
		return err
	}
	defer svc.Close()
	srv.SetService(svc)

	logger.Info("Starting pokertable server",
		"addr", addr,
		"tables", len(cfg.Tables),
		"config", c.Config)

	g, ctx := errgroup.WithContext(shared.SignalContext(logger))
	g.Go(func() error { return srv.Serve(ctx) })
	g.Go(func() error { return svc.RunTicker(ctx) })
	return g.Wait()
}
