package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Wiki            WikiConfig
	Display         DisplayConfig
	Storage         StorageConfig
	NamespaceColors map[int]string
}

type WikiConfig struct {
	MetaAPI           string  `toml:"meta_api"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

type DisplayConfig struct {
	StartView   string `toml:"start_view"`
	BarWidth    int    `toml:"bar_width"`
	RecentEdits int    `toml:"recent_edits"`
}

type StorageConfig struct {
	DBPath        string `toml:"db_path"`
	CacheTTLHours int    `toml:"cache_ttl_hours"`
	RetentionDays int    `toml:"retention_days"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// Views lists the accepted values of display.start_view, in tab order.
var Views = []string{"overview", "namespaces", "activity", "punchcard", "months", "tags", "code", "map", "recent"}

var knownTopLevel = map[string]bool{
	"wiki":             true,
	"display":          true,
	"storage":          true,
	"namespace_colors": true,
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultPath returns ~/.config/wiki-top/config.toml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wiki-top", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(DefaultPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	result, err := parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

func LoadFromString(data string) (*LoadResult, error) {
	if data == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	result, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

type tomlFile struct {
	Wiki    *WikiConfig    `toml:"wiki"`
	Display *DisplayConfig `toml:"display"`
	Storage *StorageConfig `toml:"storage"`
}

func parse(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, err
	}

	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}
	sort.Strings(result.Warnings)

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, err
	}

	mergeFromRaw(&result.Config, &tf, raw)
	result.Warnings = append(result.Warnings, mergeColorsFromRaw(&result.Config, raw)...)

	return result, nil
}

func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Wiki != nil {
		if section, ok := rawSection(raw, "wiki"); ok {
			if _, exists := section["meta_api"]; exists {
				cfg.Wiki.MetaAPI = tf.Wiki.MetaAPI
			}
			if _, exists := section["user_agent"]; exists {
				cfg.Wiki.UserAgent = tf.Wiki.UserAgent
			}
			if _, exists := section["requests_per_second"]; exists {
				cfg.Wiki.RequestsPerSecond = tf.Wiki.RequestsPerSecond
			}
			if _, exists := section["burst"]; exists {
				cfg.Wiki.Burst = tf.Wiki.Burst
			}
			if _, exists := section["timeout_seconds"]; exists {
				cfg.Wiki.TimeoutSeconds = tf.Wiki.TimeoutSeconds
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["start_view"]; exists {
				cfg.Display.StartView = tf.Display.StartView
			}
			if _, exists := section["bar_width"]; exists {
				cfg.Display.BarWidth = tf.Display.BarWidth
			}
			if _, exists := section["recent_edits"]; exists {
				cfg.Display.RecentEdits = tf.Display.RecentEdits
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["cache_ttl_hours"]; exists {
				cfg.Storage.CacheTTLHours = tf.Storage.CacheTTLHours
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// mergeColorsFromRaw overlays [namespace_colors] onto the defaults. Keys
// are namespace ids, values hex colours with or without a leading '#'.
func mergeColorsFromRaw(cfg *Config, raw map[string]any) []string {
	section, ok := rawSection(raw, "namespace_colors")
	if !ok {
		return nil
	}

	var warnings []string
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ns, err := strconv.Atoi(key)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("namespace_colors: %q is not a namespace id", key))
			continue
		}
		color, ok := section[key].(string)
		if !ok || !hexColor.MatchString(color) {
			warnings = append(warnings, fmt.Sprintf("namespace_colors: invalid colour for namespace %d", ns))
			continue
		}
		if cfg.NamespaceColors == nil {
			cfg.NamespaceColors = make(map[int]string)
		}
		cfg.NamespaceColors[ns] = strings.ToUpper(strings.TrimPrefix(color, "#"))
	}
	return warnings
}

func validate(cfg *Config) error {
	var errs []string

	if u, err := url.Parse(cfg.Wiki.MetaAPI); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("wiki meta_api must be an absolute URL, got %q", cfg.Wiki.MetaAPI))
	}
	if strings.TrimSpace(cfg.Wiki.UserAgent) == "" {
		errs = append(errs, "wiki user_agent must not be empty")
	}
	if cfg.Wiki.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Sprintf("wiki requests_per_second must be positive, got %f", cfg.Wiki.RequestsPerSecond))
	}
	if cfg.Wiki.Burst < 1 {
		errs = append(errs, fmt.Sprintf("wiki burst must be positive, got %d", cfg.Wiki.Burst))
	}
	if cfg.Wiki.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("wiki timeout_seconds must be positive, got %d", cfg.Wiki.TimeoutSeconds))
	}

	if !slices.Contains(Views, cfg.Display.StartView) {
		errs = append(errs, fmt.Sprintf("display start_view must be one of %s, got %q", strings.Join(Views, "|"), cfg.Display.StartView))
	}
	if cfg.Display.BarWidth < 5 || cfg.Display.BarWidth > 200 {
		errs = append(errs, fmt.Sprintf("display bar_width must be 5-200, got %d", cfg.Display.BarWidth))
	}
	if cfg.Display.RecentEdits < 1 {
		errs = append(errs, fmt.Sprintf("display recent_edits must be positive, got %d", cfg.Display.RecentEdits))
	}

	if cfg.Storage.CacheTTLHours < 0 {
		errs = append(errs, fmt.Sprintf("storage cache_ttl_hours must not be negative, got %d", cfg.Storage.CacheTTLHours))
	}
	if cfg.Storage.RetentionDays <= 0 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}
