// Command daisyworld-server exposes a daisyworld simulation over HTTP. It
// serves the JSON control API and a websocket state stream, and can drive the
// world from a background runner.
//
// Configuration is resolved from flags, then DAISYWORLD_* environment
// variables, then defaults. Run with -h for the full list.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"daisyworld/internal/server"
	"daisyworld/internal/sims/daisyworld"
)

func main() {
	cfg, err := loadServerConfig(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	logger := NewLogger(cfg.LogLevel)

	wcfg := daisyworld.DefaultConfig()
	if cfg.Seed != 0 {
		wcfg.Seed = cfg.Seed
	}
	wcfg.Params.Round = cfg.Round
	world := daisyworld.NewWithConfig(wcfg)

	srv := server.New(world, logger)
	defer srv.Close()

	if cfg.AutoRun {
		srv.StartRun(cfg.TPS)
		logger.Infof("runner started at %d ticks/s", cfg.TPS)
	}

	logger.Infof("daisyworld-server listening on %s", cfg.Addr)
	logger.Fatalf("server stopped: %v", http.ListenAndServe(cfg.Addr, srv.Router()))
}
