package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadTileMatch loads tile-match configuration.
// Search order: customPath -> ~/.arcade/configs/tilematch.yaml -> ./configs/tilematch.yaml -> embedded default
func LoadTileMatch(customPath string) (TileMatchConfig, error) {
	return load("tilematch.yaml", customPath, defaultTileMatchYAML, DefaultTileMatchConfig)
}

// LoadDodge loads dodge configuration.
// Search order: customPath -> ~/.arcade/configs/dodge.yaml -> ./configs/dodge.yaml -> embedded default
func LoadDodge(customPath string) (DodgeConfig, error) {
	return load("dodge.yaml", customPath, defaultDodgeYAML, DefaultDodgeConfig)
}

// LoadServer loads the API server configuration and applies environment
// overrides. Same search order as the game configs.
func LoadServer(customPath string) (ServerConfig, error) {
	cfg, err := load("server.yaml", customPath, defaultServerYAML, DefaultServerConfig)
	if err != nil {
		return cfg, err
	}
	if err := ApplyServerEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// load decodes the first readable config in the search order on top of the
// hardcoded defaults, so a partial file only overrides the keys it sets.
func load[T any](filename, customPath string, embedded []byte, defaults func() T) (T, error) {
	cfg := defaults()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(filename), filepath.Join("configs", filename)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := defaults()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return candidate, nil
		}
	}

	if err := yaml.Unmarshal(embedded, &cfg); err != nil {
		return defaults(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// LoadEnv loads .env files into the process environment. Missing files are
// not an error; variables already set in the environment win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyServerEnv overrides server settings from environment variables.
func ApplyServerEnv(cfg *ServerConfig) error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = SplitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = SplitList(v)
	}
	if v := os.Getenv("STORE"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Store.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.Store.RedisDB = db
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	return nil
}

// SplitList splits a comma-separated value and trims each element.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
