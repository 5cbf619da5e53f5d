package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment key, e.g. SUIBLOG_RPC_URL.
const EnvPrefix = "SUIBLOG"

// parseEnv overlays cfg with SUIBLOG_* variables that are set and non-empty.
func parseEnv(cfg *Config) error {
	v := viper.NewWithOptions(
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)
	v.SetEnvPrefix(EnvPrefix)

	strs := map[string]*string{
		"rpc_url":        &cfg.RPCURL,
		"network":        &cfg.Network,
		"package_id":     &cfg.PackageID,
		"wallet_addr":    &cfg.WalletAddr,
		"wallet_session": &cfg.WalletSession,
		"blob_backend":   &cfg.BlobBackend,
		"publisher_url":  &cfg.PublisherURL,
		"aggregator_url": &cfg.AggregatorURL,
		"s3_endpoint":    &cfg.S3Endpoint,
		"s3_region":      &cfg.S3Region,
		"s3_bucket":      &cfg.S3Bucket,
		"s3_access_key":  &cfg.S3AccessKey,
		"s3_secret_key":  &cfg.S3SecretKey,
		"db_path":        &cfg.DBPath,
		"download_dir":   &cfg.DownloadDir,
		"log_level":      &cfg.LogLevel,
		"log_format":     &cfg.LogFormat,
		"metrics_addr":   &cfg.MetricsAddr,
	}
	ints := map[string]*int{
		"epochs":               &cfg.Epochs,
		"upload_concurrency":   &cfg.UploadConcurrency,
		"inline_content_limit": &cfg.InlineContentLimit,
		"page_size":            &cfg.PageSize,
		"cache_size":           &cfg.CacheSize,
		"retry_attempts":       &cfg.RetryAttempts,
	}
	durations := map[string]*time.Duration{
		"cache_ttl":             &cfg.CacheTTL,
		"online_check_interval": &cfg.OnlineCheckInterval,
		"request_timeout":       &cfg.RequestTimeout,
	}

	for key, dst := range strs {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	for key, dst := range ints {
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("env %s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = n
	}

	for key, dst := range durations {
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return fmt.Errorf("env %s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}

	return nil
}
