// Package config loads and validates the node configuration.
package config

import "fmt"

// Config is the full node configuration.
type Config struct {
	Node    NodeConfig    `mapstructure:"node"`
	Server  ServerConfig  `mapstructure:"server"`
	Journal JournalConfig `mapstructure:"journal"`
	Genesis GenesisConfig `mapstructure:"genesis"`

	configPath string
}

// NodeConfig selects the state backend and host pricing.
type NodeConfig struct {
	// StoreBackend is one of the registered key-value backends:
	// memory, pebble, leveldb.
	StoreBackend string `mapstructure:"store_backend"`
	// StorePath is the on-disk location for persistent backends.
	StorePath string `mapstructure:"store_path"`
	// CacheSize is the per-program read cache capacity in entries;
	// zero disables caching.
	CacheSize int `mapstructure:"cache_size"`
	// StorageByteCost prices one byte of committed state growth.
	StorageByteCost uint64 `mapstructure:"storage_byte_cost"`
}

// ServerConfig configures the JSON-RPC listener.
type ServerConfig struct {
	IP   string `mapstructure:"ip"`
	Port int    `mapstructure:"port"`
}

// JournalConfig configures the optional invocation journal.
type JournalConfig struct {
	// Driver is "sqlite", "postgres", or empty to disable journaling.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// GenesisConfig describes the accounts and programs created at startup.
type GenesisConfig struct {
	// Admin receives the registry admin and minter roles.
	Admin string `mapstructure:"admin"`
	// RegistryAccount and MarketAccount are the program account ids.
	RegistryAccount string `mapstructure:"registry_account"`
	MarketAccount   string `mapstructure:"market_account"`
	// ProgramFloat is the operational balance each program starts with.
	ProgramFloat uint64 `mapstructure:"program_float"`
	// Accounts seeds external balances.
	Accounts []GenesisAccount `mapstructure:"accounts"`
}

// GenesisAccount is one seeded balance.
type GenesisAccount struct {
	AccountID string `mapstructure:"account_id"`
	Balance   uint64 `mapstructure:"balance"`
}

// Addr returns the listener address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.IP, s.Port)
}

// GetConfigPath returns the path the config was loaded from, empty when
// running on defaults.
func (c *Config) GetConfigPath() string { return c.configPath }

// ValidateConfig checks the configuration for inconsistencies.
func ValidateConfig(c *Config) error {
	switch c.Node.StoreBackend {
	case "memory":
	case "pebble", "leveldb":
		if c.Node.StorePath == "" {
			return fmt.Errorf("node.store_path is required for backend %s", c.Node.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown node.store_backend %q", c.Node.StoreBackend)
	}
	if c.Node.StorageByteCost == 0 {
		return fmt.Errorf("node.storage_byte_cost must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Journal.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown journal.driver %q", c.Journal.Driver)
	}
	if c.Journal.Driver != "" && c.Journal.DSN == "" {
		return fmt.Errorf("journal.dsn is required when journal.driver is set")
	}
	if c.Genesis.Admin == "" {
		return fmt.Errorf("genesis.admin is required")
	}
	if c.Genesis.RegistryAccount == "" || c.Genesis.MarketAccount == "" {
		return fmt.Errorf("genesis program accounts are required")
	}
	if c.Genesis.RegistryAccount == c.Genesis.MarketAccount {
		return fmt.Errorf("registry and market accounts must differ")
	}
	return nil
}
