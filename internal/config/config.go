package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/covertcloak/scripture-alarm/internal/logger"
)

// Config holds the settings of the alarm daemon and its command line client.
type Config struct {
	// ListenAddress is the gRPC address of the daemon's control API.
	ListenAddress string `yaml:"listen_addr" mapstructure:"listen_addr"`
	// StateFile is the key-value file holding alarms, preferences and the sequential cursor.
	StateFile string `yaml:"state_file" mapstructure:"state_file"`
	// BibleDB is the optional path of the SQLite scripture database.
	BibleDB string `yaml:"bible_db,omitempty" mapstructure:"bible_db"`
	// Timeout is the duration for control API calls.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// LogLevel is the minimum level written to the log.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// LogFile additionally writes a rotated log file when set.
	LogFile string `yaml:"log_file,omitempty" mapstructure:"log_file"`
	// PreciseAlarms reports whether exact wake timers may be armed on this host.
	PreciseAlarms bool `yaml:"precise_alarms" mapstructure:"precise_alarms"`
	// Snooze is the delay before a snoozed alert fires again.
	Snooze time.Duration `yaml:"snooze" mapstructure:"snooze"`
	// Ramp shapes the volume ramp.
	Ramp Ramp `yaml:"ramp" mapstructure:"ramp"`
	// Volume selects the mixer control.
	Volume Volume `yaml:"volume" mapstructure:"volume"`
	// Speech configures the synthesizer.
	Speech Speech `yaml:"speech" mapstructure:"speech"`
	// Haptic configures the vibration cue.
	Haptic Haptic `yaml:"haptic" mapstructure:"haptic"`
}

// Ramp shapes the volume ramp.
type Ramp struct {
	// Interval is the delay between volume steps.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// StartRatio is the share of maximum volume the ramp starts at.
	StartRatio float64 `yaml:"start_ratio" mapstructure:"start_ratio"`
}

// Volume selects the mixer control.
type Volume struct {
	// Control is the amixer control name.
	Control string `yaml:"control" mapstructure:"control"`
	// Steps is the number of discrete volume units.
	Steps int `yaml:"steps" mapstructure:"steps"`
}

// Speech configures the synthesizer.
type Speech struct {
	// Command is the espeak-compatible binary.
	Command string `yaml:"command" mapstructure:"command"`
	// Greeting replaces the spoken greeting when set.
	Greeting string `yaml:"greeting,omitempty" mapstructure:"greeting"`
}

// Haptic configures the vibration cue.
type Haptic struct {
	// Pattern alternates wait and buzz durations in milliseconds.
	Pattern []int `yaml:"pattern" mapstructure:"pattern"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "scripture-alarm.yaml"

	// DefaultStateFilename is the default filename for the key-value state.
	DefaultStateFilename = "scripture-alarm-state.yaml"

	// DefaultListenAddress keeps the control API on loopback.
	DefaultListenAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for control API calls.
	DefaultTimeout = 5 * time.Second

	// DefaultSnooze is the default re-fire delay of a snoozed alert.
	DefaultSnooze = 5 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// EnvPrefix prefixes environment overrides, e.g. SCRIPTURE_ALARM_RAMP_INTERVAL.
	EnvPrefix = "SCRIPTURE_ALARM"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errListenAddressRequired is returned when the listen address is missing.
	errListenAddressRequired = errors.New("listen address must be provided")
	// errInvalidValue wraps every out-of-range setting.
	errInvalidValue = errors.New("invalid setting")
)

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		StateFile:     DefaultStateFilename,
		Timeout:       DefaultTimeout,
		LogLevel:      "info",
		PreciseAlarms: true,
		Snooze:        DefaultSnooze,
		Ramp: Ramp{
			Interval:   2 * time.Second,
			StartRatio: 0.3,
		},
		Volume: Volume{
			Control: "Master",
			Steps:   15,
		},
		Speech: Speech{
			Command: "espeak-ng",
		},
		Haptic: Haptic{
			Pattern: []int{0, 500, 200, 500},
		},
	}
}

// Load reads configuration from path, applies SCRIPTURE_ALARM_* environment
// overrides and validates the result. An empty path means the default file,
// which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	v := viper.New()
	v.SetConfigFile(filepath.Clean(path))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		logger.Logger().Debugw("Settings file not found, using defaults", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply even
// when the file omits them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("listen_addr", d.ListenAddress)
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("bible_db", d.BibleDB)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("precise_alarms", d.PreciseAlarms)
	v.SetDefault("snooze", d.Snooze)
	v.SetDefault("ramp.interval", d.Ramp.Interval)
	v.SetDefault("ramp.start_ratio", d.Ramp.StartRatio)
	v.SetDefault("volume.control", d.Volume.Control)
	v.SetDefault("volume.steps", d.Volume.Steps)
	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.greeting", d.Speech.Greeting)
	v.SetDefault("haptic.pattern", d.Haptic.Pattern)
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings, filling defaults for unset optional values.
func Validate(settings *Config) error {
	if settings.ListenAddress == "" {
		return errListenAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); settings.LogLevel != "" && !ok {
		return fmt.Errorf("%w: unknown log level %q", errInvalidValue, settings.LogLevel)
	}

	if settings.Snooze < 0 || settings.Timeout < 0 || settings.Ramp.Interval < 0 {
		return fmt.Errorf("%w: durations must not be negative", errInvalidValue)
	}

	if settings.Ramp.StartRatio < 0 || settings.Ramp.StartRatio > 1 {
		return fmt.Errorf("%w: ramp start ratio %v not within 0..1", errInvalidValue, settings.Ramp.StartRatio)
	}

	if settings.Volume.Steps < 0 {
		return fmt.Errorf("%w: volume steps %d", errInvalidValue, settings.Volume.Steps)
	}

	for _, ms := range settings.Haptic.Pattern {
		if ms < 0 {
			return fmt.Errorf("%w: negative haptic pattern entry %d", errInvalidValue, ms)
		}
	}

	defaults := Default()

	// Zero values fall back to the defaults.
	if settings.Timeout == 0 {
		settings.Timeout = defaults.Timeout
	}

	if settings.Snooze == 0 {
		settings.Snooze = defaults.Snooze
	}

	if settings.StateFile == "" {
		settings.StateFile = defaults.StateFile
	}

	if settings.LogLevel == "" {
		settings.LogLevel = defaults.LogLevel
	}

	return nil
}

// PatternDurations converts the millisecond pattern for the haptic device.
func (h Haptic) PatternDurations() []time.Duration {
	if len(h.Pattern) == 0 {
		return nil
	}

	result := make([]time.Duration, 0, len(h.Pattern))
	for _, ms := range h.Pattern {
		result = append(result, time.Duration(ms)*time.Millisecond)
	}

	return result
}
