// Package config loads runtime configuration for the suiblog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults), pointing at testnet.
//  2. Optional JSON file selected with -c or -config.
//  3. SUIBLOG_* environment variables (SUIBLOG_RPC_URL, SUIBLOG_PAGE_SIZE, ...).
//  4. Command-line flags, see parseFlags.
//
// # JSON schema
//
// Keys match the environment names in lower case. Durations are strings
// like "15s" or integer nanoseconds:
//
//	{
//	  "rpc_url": "https://fullnode.testnet.sui.io:443",
//	  "package_id": "0x4a38...bd50",
//	  "blob_backend": "walrus",
//	  "page_size": 6,
//	  "cache_ttl": "15s",
//	  "online_check_interval": "5s"
//	}
//
// Keys absent from the file keep their earlier value.
package config
