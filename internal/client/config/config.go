package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the suiblog CLI.
type Config struct {
	// Ledger.
	RPCURL    string
	Network   string
	PackageID string

	// Wallet daemon (gRPC) and its session token.
	WalletAddr    string
	WalletSession string

	// Blob storage.
	BlobBackend        string
	PublisherURL       string
	AggregatorURL      string
	S3Endpoint         string
	S3Region           string
	S3Bucket           string
	S3AccessKey        string
	S3SecretKey        string
	Epochs             int
	UploadConcurrency  int
	InlineContentLimit int

	// Reader.
	PageSize  int
	CacheTTL  time.Duration
	CacheSize int

	// Local state.
	DBPath      string
	DownloadDir string

	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	RetryAttempts       int

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

const (
	BackendWalrus = "walrus"
	BackendS3     = "s3"
)

// LoadDefaults populates c with testnet defaults.
func (c *Config) LoadDefaults() {
	c.RPCURL = "https://fullnode.testnet.sui.io:443"
	c.Network = "sui:testnet"
	c.PackageID = "0x4a38581778ca24696476d84e0960ba8b5d2c709ac3b1ab9570b6699b9ad3bd50"

	c.WalletAddr = "127.0.0.1:50061"

	c.BlobBackend = BackendWalrus
	c.PublisherURL = "https://publisher.walrus-testnet.walrus.space"
	c.AggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Region = "us-east-1"
	c.S3Bucket = "suiblog"
	c.Epochs = 5
	c.UploadConcurrency = 4

	c.PageSize = 6
	c.CacheTTL = 15 * time.Second
	c.CacheSize = 256

	c.DBPath = "suiblog.db"
	c.DownloadDir = "downloads"

	c.OnlineCheckInterval = 5 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.RetryAttempts = 3

	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.PackageID == "":
		return fmt.Errorf("package_id is required")
	case c.RPCURL == "":
		return fmt.Errorf("rpc_url is required")
	case c.PageSize <= 0:
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	case c.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.InlineContentLimit < 0:
		return fmt.Errorf("inline_content_limit must not be negative")
	case c.BlobBackend != BackendWalrus && c.BlobBackend != BackendS3:
		return fmt.Errorf("unknown blob_backend %q", c.BlobBackend)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// SUIBLOG_* environment variables, then command-line flags. Later sources
// win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
