// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for dilekce.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - $DILEKCE_HOME/config.toml or ~/.dilekce/config.toml
//   - $DILEKCE_HOME/config.json or ~/.dilekce/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete dilekce configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	LLM        LLMConfig        `toml:"llm" json:"llm"`
	Dictionary DictionaryConfig `toml:"dictionary" json:"dictionary"`
	Storage    StorageConfig    `toml:"storage" json:"storage"`
	Session    SessionConfig    `toml:"session" json:"session"`
	UI         UIConfig         `toml:"ui" json:"ui"`
	Logging    LoggingConfig    `toml:"logging" json:"logging"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	// Provider is "ollama" or "gemini".
	Provider string `toml:"provider" json:"provider"`

	// Model is the model name passed to the provider.
	Model string `toml:"model" json:"model"`

	// OllamaURL is the base URL of the Ollama server.
	OllamaURL string `toml:"ollama_url" json:"ollama_url"`

	// GeminiKey is the Google AI API key.
	GeminiKey string `toml:"gemini_key" json:"gemini_key,omitempty"`

	// TimeoutSecs bounds one completion request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// DictionaryConfig points at a custom phrase dictionary.
type DictionaryConfig struct {
	// Path is a .toml, .yaml, .json or .txt phrase file. Empty means the
	// built-in dictionary.
	Path string `toml:"path" json:"path"`

	// Watch reloads the dictionary when the file changes.
	Watch bool `toml:"watch" json:"watch"`
}

// StorageConfig configures session history persistence.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`

	// Dir is the data directory. Empty means the config directory.
	Dir string `toml:"dir" json:"dir"`

	// MaxSessions limits stored sessions (0 = unlimited).
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
}

// SessionConfig configures session behavior.
type SessionConfig struct {
	// DefaultMode is the mode of new sessions.
	DefaultMode string `toml:"default_mode" json:"default_mode"`

	// Autosave persists the session after every change.
	Autosave bool `toml:"autosave" json:"autosave"`

	// SaveIntervalMs is the minimum time between two writes.
	SaveIntervalMs int `toml:"save_interval_ms" json:"save_interval_ms"`

	// SaveTimeoutSecs bounds one write.
	SaveTimeoutSecs int `toml:"save_timeout_secs" json:"save_timeout_secs"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	Theme      string `toml:"theme" json:"theme"`
	GhostText  bool   `toml:"ghost_text" json:"ghost_text"`
	ShowTokens bool   `toml:"show_tokens" json:"show_tokens"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level"`

	// File is the log path. Empty means dilekce.log in the config directory.
	File string `toml:"file" json:"file"`

	MaxSizeMB  int  `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days" json:"max_age_days"`
	Compress   bool `toml:"compress" json:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "qwen3",
			OllamaURL:   "http://localhost:11434",
			TimeoutSecs: 300,
		},
		Dictionary: DictionaryConfig{
			Watch: true,
		},
		Storage: StorageConfig{
			Backend:     "file",
			MaxSessions: 100,
		},
		Session: SessionConfig{
			DefaultMode:     string(mode.Default),
			Autosave:        true,
			SaveIntervalMs:  500,
			SaveTimeoutSecs: 5,
		},
		UI: UIConfig{
			Theme:      "dark",
			GhostText:  true,
			ShowTokens: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// LLMTimeout returns the completion timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

// SaveInterval returns the minimum time between session writes.
func (c *Config) SaveInterval() time.Duration {
	return time.Duration(c.Session.SaveIntervalMs) * time.Millisecond
}

// SaveTimeout returns the per-write timeout.
func (c *Config) SaveTimeout() time.Duration {
	return time.Duration(c.Session.SaveTimeoutSecs) * time.Second
}

// DefaultMode returns the configured initial mode, falling back to
// mode.Default for unknown names.
func (c *Config) DefaultMode() mode.Mode {
	m, _ := mode.Parse(c.Session.DefaultMode)
	return m
}

// DataDir returns the storage directory with "~" expanded.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return util.ExpandHome(c.Storage.Dir), nil
	}
	return ConfigDir()
}

// DictionaryPath returns the dictionary path with "~" expanded, or "" for
// the built-in dictionary.
func (c *Config) DictionaryPath() string {
	return util.ExpandHome(c.Dictionary.Path)
}

// LogPath returns the log file path with "~" expanded.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return util.ExpandHome(c.Logging.File), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dilekce.log"), nil
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the dilekce configuration directory. DILEKCE_HOME
// overrides the default ~/.dilekce.
func ConfigDir() (string, error) {
	if dir := os.Getenv("DILEKCE_HOME"); dir != "" {
		return util.ExpandHome(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".dilekce"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file. TOML is tried first, then
// JSON, then defaults. Environment overrides are applied last. A file that
// fails to parse is reported alongside the default configuration.
func Load() (*Config, error) {
	var loadErr error

	for _, candidate := range []struct {
		pathFn func() (string, error)
		load   func(*Config, string) error
	}{
		{ConfigPathTOML, LoadTOML},
		{ConfigPathJSON, LoadJSON},
	} {
		path, err := candidate.pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg := Default()
		if err := candidate.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s: %w", path, err)
			continue
		}
		return finish(cfg)
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .json are decoded as JSON, everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	load := LoadTOML
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		load = LoadJSON
	}
	if err := load(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaults.LLM.Provider
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaults.LLM.Model
	}
	if cfg.LLM.OllamaURL == "" {
		cfg.LLM.OllamaURL = defaults.LLM.OllamaURL
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = defaults.LLM.TimeoutSecs
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}

	if cfg.Session.DefaultMode == "" {
		cfg.Session.DefaultMode = defaults.Session.DefaultMode
	}
	if cfg.Session.SaveIntervalMs == 0 {
		cfg.Session.SaveIntervalMs = defaults.Session.SaveIntervalMs
	}
	if cfg.Session.SaveTimeoutSecs == 0 {
		cfg.Session.SaveTimeoutSecs = defaults.Session.SaveTimeoutSecs
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions,
// since it may hold an API key.
func SaveTOML(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# dilekce configuration file\n")
	sb.WriteString("# Values can be overridden with DILEKCE_* environment variables.\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "ollama":
		if u, err := url.Parse(c.LLM.OllamaURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("llm.ollama_url", "invalid URL %q", c.LLM.OllamaURL)
		} else if u.Scheme != "http" && u.Scheme != "https" {
			add("llm.ollama_url", "scheme must be http or https, got %q", u.Scheme)
		}
	case "gemini":
	default:
		add("llm.provider", "invalid provider %q, must be one of: ollama, gemini", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		add("llm.model", "must not be empty")
	}
	if c.LLM.TimeoutSecs < 1 || c.LLM.TimeoutSecs > 3600 {
		add("llm.timeout_secs", "must be between 1 and 3600, got %d", c.LLM.TimeoutSecs)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "file", "sqlite":
	default:
		add("storage.backend", "invalid backend %q, must be one of: file, sqlite", c.Storage.Backend)
	}
	if c.Storage.MaxSessions < 0 {
		add("storage.max_sessions", "must not be negative, got %d", c.Storage.MaxSessions)
	}

	if _, ok := mode.Parse(c.Session.DefaultMode); !ok {
		add("session.default_mode", "invalid mode %q, must be one of: sor, ozetle, yazdir", c.Session.DefaultMode)
	}
	if c.Session.SaveIntervalMs < 0 {
		add("session.save_interval_ms", "must not be negative, got %d", c.Session.SaveIntervalMs)
	}
	if c.Session.SaveTimeoutSecs < 1 {
		add("session.save_timeout_secs", "must be at least 1, got %d", c.Session.SaveTimeoutSecs)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme %q, must be one of: dark, light, auto", c.UI.Theme)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "invalid level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 1 {
		add("logging.max_size_mb", "must be at least 1, got %d", c.Logging.MaxSizeMB)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - DILEKCE_PROVIDER: llm.provider
//   - DILEKCE_MODEL: llm.model
//   - DILEKCE_OLLAMA_URL: llm.ollama_url
//   - DILEKCE_GEMINI_KEY, then GEMINI_API_KEY: llm.gemini_key
//   - DILEKCE_DICTIONARY: dictionary.path
//   - DILEKCE_STORAGE: storage.backend
//   - DILEKCE_MODE: session.default_mode
//   - DILEKCE_LOG_LEVEL: logging.level
func (c *Config) ApplyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"DILEKCE_PROVIDER", &c.LLM.Provider},
		{"DILEKCE_MODEL", &c.LLM.Model},
		{"DILEKCE_OLLAMA_URL", &c.LLM.OllamaURL},
		{"DILEKCE_DICTIONARY", &c.Dictionary.Path},
		{"DILEKCE_STORAGE", &c.Storage.Backend},
		{"DILEKCE_MODE", &c.Session.DefaultMode},
		{"DILEKCE_LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}

	if key := os.Getenv("DILEKCE_GEMINI_KEY"); key != "" {
		c.LLM.GeminiKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.LLM.GeminiKey == "" {
		c.LLM.GeminiKey = key
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g. "llm.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field name, e.g. "ollama_url" to "OllamaUrl". Matching is case-insensitive.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.IsValid() && val.Type().ConvertibleTo(field.Type()) &&
		val.Kind() != reflect.String && field.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		name := tomlName(section)
		if section.Type.Kind() != reflect.Struct {
			keys = append(keys, name)
			continue
		}
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, name+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// =============================================================================
// COPY AND DISPLAY
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with secrets replaced.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.LLM.GeminiKey != "" {
		safe.LLM.GeminiKey = "[REDACTED]"
	}
	return safe
}

// String returns the configuration as JSON with secrets redacted.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first access.
// Load errors fall back to defaults with a warning on stderr.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
