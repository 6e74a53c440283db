// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Backend kinds accepted by backend.kind.
const (
	BackendRobotgo = "robotgo"
	BackendVirtual = "virtual"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Engine() EngineConfig
	Dispatcher() DispatcherConfig
	Backend() BackendConfig
	Vocabulary() VocabularyConfig
	MCP() MCPConfig

	// Engine Setters
	SetEngineMarginPx(int)
	SetEngineMoveDurationMs(int)
	SetEngineTypeIntervalMs(int)

	// Backend Setters
	SetBackendKind(string)
	SetBackendScreenSize(width, height int)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	EngineCfg     EngineConfig     `mapstructure:"engine" yaml:"engine"`
	DispatcherCfg DispatcherConfig `mapstructure:"dispatcher" yaml:"dispatcher"`
	BackendCfg    BackendConfig    `mapstructure:"backend" yaml:"backend"`
	VocabularyCfg VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary"`
	MCPCfg        MCPConfig        `mapstructure:"mcp" yaml:"mcp"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Engine() EngineConfig         { return c.EngineCfg }
func (c *Config) Dispatcher() DispatcherConfig { return c.DispatcherCfg }
func (c *Config) Backend() BackendConfig       { return c.BackendCfg }
func (c *Config) Vocabulary() VocabularyConfig { return c.VocabularyCfg }
func (c *Config) MCP() MCPConfig               { return c.MCPCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetEngineMarginPx(px int)        { c.EngineCfg.MarginPx = px }
func (c *Config) SetEngineMoveDurationMs(ms int)  { c.EngineCfg.MoveDurationMs = ms }
func (c *Config) SetEngineTypeIntervalMs(ms int)  { c.EngineCfg.TypeIntervalMs = ms }
func (c *Config) SetBackendKind(kind string)      { c.BackendCfg.Kind = kind }
func (c *Config) SetBackendScreenSize(w, h int) {
	c.BackendCfg.ScreenWidth = w
	c.BackendCfg.ScreenHeight = h
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig is the static option set read once at session start.
type EngineConfig struct {
	// MarginPx insets corner and edge anchors from the screen border.
	MarginPx        int `mapstructure:"margin_px" yaml:"margin_px"`
	MoveDurationMs  int `mapstructure:"move_duration_ms" yaml:"move_duration_ms"`
	TypeIntervalMs  int `mapstructure:"type_interval_ms" yaml:"type_interval_ms"`
	ContextCapacity int `mapstructure:"context_capacity" yaml:"context_capacity"`
}

// DispatcherConfig tunes how actions are paced against the device.
type DispatcherConfig struct {
	StepsPerSecond int `mapstructure:"steps_per_second" yaml:"steps_per_second"`
	ClickGapMs     int `mapstructure:"click_gap_ms" yaml:"click_gap_ms"`
	KeyHoldMs      int `mapstructure:"key_hold_ms" yaml:"key_hold_ms"`
	ActionGapMs    int `mapstructure:"action_gap_ms" yaml:"action_gap_ms"`
	QueueSize      int `mapstructure:"queue_size" yaml:"queue_size"`
}

// BackendConfig selects and limits the OS input backend.
type BackendConfig struct {
	Kind               string  `mapstructure:"kind" yaml:"kind"`
	MaxEventsPerSecond float64 `mapstructure:"max_events_per_second" yaml:"max_events_per_second"`
	// ScreenWidth and ScreenHeight override the size reported by the backend when non-zero.
	ScreenWidth  int `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight int `mapstructure:"screen_height" yaml:"screen_height"`
}

// VocabularyConfig points at an optional YAML file that overrides the built-in phrase tables.
type VocabularyConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MCPConfig configures the stdio tool server.
type MCPConfig struct {
	ServerName string `mapstructure:"server_name" yaml:"server_name"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cursorctl")
	v.SetDefault("logger.log_file", "~/.cursorctl/cursorctl.log")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.margin_px", 100)
	v.SetDefault("engine.move_duration_ms", 500)
	v.SetDefault("engine.type_interval_ms", 10)
	v.SetDefault("engine.context_capacity", 10)

	// -- Dispatcher --
	v.SetDefault("dispatcher.steps_per_second", 100)
	v.SetDefault("dispatcher.click_gap_ms", 80)
	v.SetDefault("dispatcher.key_hold_ms", 20)
	v.SetDefault("dispatcher.action_gap_ms", 50)
	v.SetDefault("dispatcher.queue_size", 16)

	// -- Backend --
	v.SetDefault("backend.kind", BackendRobotgo)
	v.SetDefault("backend.max_events_per_second", 1000.0)
	v.SetDefault("backend.screen_width", 0)
	v.SetDefault("backend.screen_height", 0)

	// -- Vocabulary --
	v.SetDefault("vocabulary.path", "")

	// -- MCP --
	v.SetDefault("mcp.server_name", "cursorctl")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	v.BindEnv("backend.kind", "CURSORCTL_BACKEND")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.EngineCfg.Validate(); err != nil {
		return fmt.Errorf("engine configuration invalid: %w", err)
	}
	if err := c.DispatcherCfg.Validate(); err != nil {
		return fmt.Errorf("dispatcher configuration invalid: %w", err)
	}
	if err := c.BackendCfg.Validate(); err != nil {
		return fmt.Errorf("backend configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the engine option set.
func (e *EngineConfig) Validate() error {
	if e.MarginPx < 0 {
		return fmt.Errorf("margin_px must not be negative")
	}
	if e.MoveDurationMs < 0 {
		return fmt.Errorf("move_duration_ms must not be negative")
	}
	if e.TypeIntervalMs < 0 {
		return fmt.Errorf("type_interval_ms must not be negative")
	}
	if e.ContextCapacity <= 0 {
		return fmt.Errorf("context_capacity must be a positive integer")
	}
	return nil
}

// Validate checks the dispatcher pacing settings.
func (d *DispatcherConfig) Validate() error {
	if d.StepsPerSecond <= 0 {
		return fmt.Errorf("steps_per_second must be a positive integer")
	}
	if d.ClickGapMs < 0 || d.KeyHoldMs < 0 || d.ActionGapMs < 0 {
		return fmt.Errorf("click_gap_ms, key_hold_ms and action_gap_ms must not be negative")
	}
	if d.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be a positive integer")
	}
	return nil
}

// Validate checks the backend selection.
func (b *BackendConfig) Validate() error {
	switch b.Kind {
	case BackendRobotgo, BackendVirtual:
	default:
		return fmt.Errorf("kind must be one of %q or %q, got %q", BackendRobotgo, BackendVirtual, b.Kind)
	}
	if b.MaxEventsPerSecond < 0 {
		return fmt.Errorf("max_events_per_second must not be negative")
	}
	if b.ScreenWidth < 0 || b.ScreenHeight < 0 {
		return fmt.Errorf("screen_width and screen_height must not be negative")
	}
	return nil
}
