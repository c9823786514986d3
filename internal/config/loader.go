package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration in priority order:
// 1. Built-in defaults
// 2. Configuration file (nftd.toml), when present
// 3. Environment variables (NFTD_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("NFTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// setDefaults seeds the standalone-mode defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("node.store_backend", "memory")
	v.SetDefault("node.store_path", "")
	v.SetDefault("node.cache_size", 4096)
	v.SetDefault("node.storage_byte_cost", 1)

	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("journal.driver", "")
	v.SetDefault("journal.dsn", "")

	v.SetDefault("genesis.admin", "admin.test")
	v.SetDefault("genesis.registry_account", "nft.test")
	v.SetDefault("genesis.market_account", "market.test")
	v.SetDefault("genesis.program_float", 1_000_000)
	v.SetDefault("genesis.accounts", []GenesisAccount{})
}
