package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/flagx"
)

var knownFlags = []string{"-r", "-w", "-n", "-k", "-b", "-p", "-d", "-l", "-m", "-i", "-publisher", "-aggregator"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-r string       ledger JSON-RPC URL
//	-w string       wallet daemon address
//	-n string       network passed to the wallet
//	-k string       blog package id
//	-b string       blob backend (walrus|s3)
//	-p int          posts per page
//	-d string       SQLite database path
//	-l string       log level
//	-m string       metrics listen address
//	-i int          wallet check interval, seconds
//	-publisher      Walrus publisher URL
//	-aggregator     Walrus aggregator URL
//
// args is filtered with flagx.FilterArgs so other loaders' flags are ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("suiblog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RPCURL, "r", cfg.RPCURL, "ledger JSON-RPC URL")
	fs.StringVar(&cfg.WalletAddr, "w", cfg.WalletAddr, "wallet daemon address")
	fs.StringVar(&cfg.Network, "n", cfg.Network, "network")
	fs.StringVar(&cfg.PackageID, "k", cfg.PackageID, "blog package id")
	fs.StringVar(&cfg.BlobBackend, "b", cfg.BlobBackend, "blob backend (walrus|s3)")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "posts per page")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.PublisherURL, "publisher", cfg.PublisherURL, "Walrus publisher URL")
	fs.StringVar(&cfg.AggregatorURL, "aggregator", cfg.AggregatorURL, "Walrus aggregator URL")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "wallet check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
