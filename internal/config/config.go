// Package config loads p4status configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chmouel/p4status/internal/theme"
	"gopkg.in/yaml.v3"
)

// AppConfig holds every p4status setting.
type AppConfig struct {
	P4Path        string        // p4 binary name or path
	P4Args        []string      // global args placed before every p4 command, e.g. -p host:1666
	Limit         int           // default --limit
	Format        string        // default --format: "json" or "text"
	LockTimeout   time.Duration // timeout of a single lock query
	LockWorkers   int           // concurrent lock queries
	DebugLog      string
	LogLevel      string
	WatchInterval time.Duration // refresh period of the watch view
	Theme         string        // watch view palette, see theme.AvailableThemes
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		P4Path:        "p4",
		P4Args:        []string{},
		Limit:         20,
		Format:        "json",
		LockTimeout:   30 * time.Second,
		LockWorkers:   8,
		LogLevel:      "warn",
		WatchInterval: 30 * time.Second,
		Theme:         theme.DraculaName,
	}
}

func normalizeArgsList(value any) []string {
	if value == nil {
		return []string{}
	}

	switch v := value.(type) {
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return []string{}
		}
		return strings.Fields(text)
	case []any:
		args := []string{}
		for _, item := range v {
			if item == nil {
				continue
			}
			text := strings.TrimSpace(fmt.Sprintf("%v", item))
			if text != "" {
				args = append(args, text)
			}
		}
		return args
	}

	return []string{}
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceDuration accepts Go duration strings ("45s", "2m") and bare numbers
// of seconds.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if d, err := time.ParseDuration(text); err == nil {
			return d
		}
		if i, err := strconv.Atoi(text); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultVal
}

func coerceString(value any, defaultVal string) string {
	s, ok := value.(string)
	if !ok {
		return defaultVal
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	return s
}

// apply overlays data onto cfg. Unknown keys are ignored and invalid values
// keep the current setting.
func (cfg *AppConfig) apply(data map[string]any) {
	cfg.P4Path = coerceString(data["p4_path"], cfg.P4Path)
	if v, ok := data["p4_args"]; ok {
		cfg.P4Args = normalizeArgsList(v)
	}
	if limit := coerceInt(data["limit"], cfg.Limit); limit >= 0 {
		cfg.Limit = limit
	}
	switch format := strings.ToLower(coerceString(data["format"], cfg.Format)); format {
	case "json", "text":
		cfg.Format = format
	}
	if d := coerceDuration(data["lock_timeout"], cfg.LockTimeout); d > 0 {
		cfg.LockTimeout = d
	}
	if n := coerceInt(data["lock_workers"], cfg.LockWorkers); n > 0 {
		cfg.LockWorkers = n
	}
	cfg.DebugLog = coerceString(data["debug_log"], cfg.DebugLog)
	cfg.LogLevel = strings.ToLower(coerceString(data["log_level"], cfg.LogLevel))
	if d := coerceDuration(data["watch_interval"], cfg.WatchInterval); d > 0 {
		cfg.WatchInterval = d
	}
	if name := strings.ToLower(coerceString(data["theme"], cfg.Theme)); slices.Contains(theme.AvailableThemes(), name) {
		cfg.Theme = name
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the configuration from configPath, or from
// $XDG_CONFIG_HOME/p4status/config.yaml when configPath is empty. A missing
// default file is not an error. On error the defaults are returned with it.
func LoadConfig(configPath string) (*AppConfig, error) {
	var paths []string

	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		if _, err := os.Stat(expanded); err != nil {
			return DefaultConfig(), fmt.Errorf("config file: %w", err)
		}
		paths = []string{expanded}
	} else {
		configBase := filepath.Join(getConfigDir(), "p4status")
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is chosen by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("read %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}

		return parseConfig(yamlData), nil
	}

	return DefaultConfig(), nil
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
