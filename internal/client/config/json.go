package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/suiblog/internal/flagx"
	"github.com/dmitrijs2005/suiblog/internal/timex"
)

// JsonConfig is a DTO used only for unmarshalling the config file. Pointer
// fields distinguish "absent" from zero so a partial file keeps defaults.
// Durations accept "15s" or integer nanoseconds.
type JsonConfig struct {
	RPCURL    *string `json:"rpc_url"`
	Network   *string `json:"network"`
	PackageID *string `json:"package_id"`

	WalletAddr    *string `json:"wallet_addr"`
	WalletSession *string `json:"wallet_session"`

	BlobBackend        *string `json:"blob_backend"`
	PublisherURL       *string `json:"publisher_url"`
	AggregatorURL      *string `json:"aggregator_url"`
	S3Endpoint         *string `json:"s3_endpoint"`
	S3Region           *string `json:"s3_region"`
	S3Bucket           *string `json:"s3_bucket"`
	S3AccessKey        *string `json:"s3_access_key"`
	S3SecretKey        *string `json:"s3_secret_key"`
	Epochs             *int    `json:"epochs"`
	UploadConcurrency  *int    `json:"upload_concurrency"`
	InlineContentLimit *int    `json:"inline_content_limit"`

	PageSize  *int            `json:"page_size"`
	CacheTTL  *timex.Duration `json:"cache_ttl"`
	CacheSize *int            `json:"cache_size"`

	DBPath      *string `json:"db_path"`
	DownloadDir *string `json:"download_dir"`

	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RetryAttempts       *int            `json:"retry_attempts"`

	LogLevel    *string `json:"log_level"`
	LogFormat   *string `json:"log_format"`
	MetricsAddr *string `json:"metrics_addr"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson overlays cfg with the file named by -c/-config in args. No flag
// means no file.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.RPCURL, jc.RPCURL)
	set(&cfg.Network, jc.Network)
	set(&cfg.PackageID, jc.PackageID)
	set(&cfg.WalletAddr, jc.WalletAddr)
	set(&cfg.WalletSession, jc.WalletSession)
	set(&cfg.BlobBackend, jc.BlobBackend)
	set(&cfg.PublisherURL, jc.PublisherURL)
	set(&cfg.AggregatorURL, jc.AggregatorURL)
	set(&cfg.S3Endpoint, jc.S3Endpoint)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.Epochs, jc.Epochs)
	set(&cfg.UploadConcurrency, jc.UploadConcurrency)
	set(&cfg.InlineContentLimit, jc.InlineContentLimit)
	set(&cfg.PageSize, jc.PageSize)
	setDuration(&cfg.CacheTTL, jc.CacheTTL)
	set(&cfg.CacheSize, jc.CacheSize)
	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.DownloadDir, jc.DownloadDir)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	set(&cfg.RetryAttempts, jc.RetryAttempts)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.MetricsAddr, jc.MetricsAddr)

	return nil
}
