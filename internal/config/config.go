// Package config loads blobdiff settings from defaults, an optional config
// file, BLOBDIFF_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/NerdMeNot/blobdiff"
)

type Config struct {
	Report   ReportConfig `mapstructure:"report"`
	Suite    SuiteConfig  `mapstructure:"suite"`
	Output   OutputConfig `mapstructure:"output"`
	LogLevel string       `mapstructure:"log_level"`
}

type ReportConfig struct {
	CellWidth      int `mapstructure:"cell_width"`
	PacketSize     int `mapstructure:"packet_size"`
	TableHeight    int `mapstructure:"table_height"`
	FloatPrecision int `mapstructure:"float_precision"`
}

type SuiteConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	display := blobdiff.DefaultDisplayConfig()
	return Config{
		Report: ReportConfig{
			CellWidth:      display.CellWidth,
			PacketSize:     display.PacketSize,
			TableHeight:    display.TableHeight,
			FloatPrecision: display.FloatPrecision,
		},
		Suite: SuiteConfig{
			Concurrency: 0,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		LogLevel: "info",
	}
}

// Display converts the report section to a blobdiff.DisplayConfig.
func (c Config) Display() blobdiff.DisplayConfig {
	return blobdiff.DisplayConfig{
		CellWidth:      c.Report.CellWidth,
		PacketSize:     c.Report.PacketSize,
		TableHeight:    c.Report.TableHeight,
		FloatPrecision: c.Report.FloatPrecision,
	}
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	var errs []error
	if c.Report.CellWidth < 1 {
		errs = append(errs, fmt.Errorf("report.cell_width must be positive, got %d", c.Report.CellWidth))
	}
	if c.Report.PacketSize < 0 {
		errs = append(errs, fmt.Errorf("report.packet_size must not be negative, got %d", c.Report.PacketSize))
	}
	if c.Report.TableHeight < 1 {
		errs = append(errs, fmt.Errorf("report.table_height must be positive, got %d", c.Report.TableHeight))
	}
	if c.Suite.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("suite.concurrency must not be negative, got %d", c.Suite.Concurrency))
	}
	if _, err := NormalizeFormat(c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// NormalizeFormat lower-cases and checks an output format. Empty means text.
func NormalizeFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("output.format must be %q or %q, got %q", FormatText, FormatJSON, s)
	}
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// flagKeys maps each flag to its config key.
var flagKeys = map[string]string{
	"report-cell-width":      "report.cell_width",
	"report-packet-size":     "report.packet_size",
	"report-table-height":    "report.table_height",
	"report-float-precision": "report.float_precision",
	"suite-concurrency":      "suite.concurrency",
	"output-format":          "output.format",
	"log-level":              "log_level",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Int("report-cell-width", defaults.Report.CellWidth, "Width of every table cell")
	fs.Int("report-packet-size", defaults.Report.PacketSize, "Draw a separator every N rows (0 = off)")
	fs.Int("report-table-height", defaults.Report.TableHeight, "Rows shown from the first mismatch on")
	fs.Int("report-float-precision", defaults.Report.FloatPrecision, "Decimals shown for float values")
	fs.Int("suite-concurrency", defaults.Suite.Concurrency, "Tests compared at once (0 = GOMAXPROCS)")
	fs.String("output-format", defaults.Output.Format, "Output format: text or json")
	fs.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
}

func Load(opts LoadOptions) (Config, error) {
	if opts.Defaults == (Config{}) {
		opts.Defaults = DefaultConfig()
	}
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("BLOBDIFF")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("blobdiff")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	format, err := NormalizeFormat(cfg.Output.Format)
	if err != nil {
		return Config{}, err
	}
	cfg.Output.Format = format

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindFlags binds each registered flag under its dotted key, so file, env
// and flag values all land on the same key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("report.cell_width", c.Report.CellWidth)
	v.SetDefault("report.packet_size", c.Report.PacketSize)
	v.SetDefault("report.table_height", c.Report.TableHeight)
	v.SetDefault("report.float_precision", c.Report.FloatPrecision)
	v.SetDefault("suite.concurrency", c.Suite.Concurrency)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("log_level", c.LogLevel)
}
