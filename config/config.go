// Package config handles application configuration for the spvchain node.
//
// Configuration here is entirely node-operational: which network to join,
// where to keep data, how verbose to log, and whether to run in full
// (transaction-verifying) or header-only (SPV) mode. Consensus rules live
// in pkg/chainparams and are immutable per network.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds node-specific runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// FullMode selects full transaction verification with UTXO bookkeeping
	// over header-only SPV operation.
	FullMode bool `conf:"fullmode"`

	// PruneBodies and KeepBodies are read from the config file and flags and
	// checked by Validate. Nothing acts on them: spvnode does not pass them
	// to the store, and no code discards bodies by depth.
	PruneBodies bool   `conf:"prunebodies"`
	KeepBodies  uint64 `conf:"keepbodies"`

	// MaxOrphans bounds the orphan pool.
	MaxOrphans int `conf:"maxorphans"`

	Log LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.spvchain
//	macOS:   ~/Library/Application Support/Spvchain
//	Windows: %APPDATA%\Spvchain
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spvchain"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Spvchain")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Spvchain")
		}
		return filepath.Join(home, "AppData", "Roaming", "Spvchain")
	default:
		return filepath.Join(home, ".spvchain")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// BlocksDir returns the block store directory.
func (c *Config) BlocksDir() string {
	return filepath.Join(c.ChainDataDir(), "blocks")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "spvchain.conf")
}
