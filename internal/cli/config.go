package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration file for the CLI and the server.
// Everything has a working default; the file only exists to override
// deployment-specific settings.
//
// Example (~/.config/treecontrast/config.toml):
//
//	[server]
//	addr = ":9090"
//
//	[redis]
//	addr = "redis.internal:6379"
//
//	[mongo]
//	uri = "mongodb://mongo.internal:27017"
//	database = "treecontrast"
type Config struct {
	CacheDir string       `toml:"cache_dir"`
	Server   ServerConfig `toml:"server"`
	Redis    RedisConfig  `toml:"redis"`
	Mongo    MongoConfig  `toml:"mongo"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RedisConfig configures the shared result cache. An empty Addr means the
// server falls back to the local file cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures run persistence. An empty URI means runs are kept
// in memory.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Mongo:  MongoConfig{Database: appName},
	}
}

// loadConfig reads the TOML config from path. An empty path falls back to
// the XDG config location; a missing file is not an error and yields the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file %s does not exist", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q in %s", undecoded[0], path)
	}

	// Re-apply defaults the file may have blanked.
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = appName
	}
	return cfg, nil
}
