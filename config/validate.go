package config

import "fmt"

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.PruneBodies && cfg.FullMode && cfg.KeepBodies == 0 {
		return fmt.Errorf("keepbodies must be > 0 when prunebodies is enabled in full mode")
	}
	if cfg.MaxOrphans < 0 {
		return fmt.Errorf("maxorphans must be >= 0")
	}
	return nil
}
