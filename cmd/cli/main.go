package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/suiblog/internal/buildinfo"
	"github.com/dmitrijs2005/suiblog/internal/client/cli"
	"github.com/dmitrijs2005/suiblog/internal/client/config"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var m metrics.Provider = metrics.Noop{}
	if cfg.MetricsAddr != "" {
		p := metrics.NewPrometheusProvider()
		m = p
		go func() {
			if err := p.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error(ctx, "metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	app, err := cli.NewApp(ctx, cfg, logger, m)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
