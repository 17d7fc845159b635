// Package config loads htsvoice's runtime configuration from flags,
// environment variables, and an optional config file, layered with
// spf13/viper the way the rest of the pack's CLI tools do.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"log_level"`
}

type PathsConfig struct {
	VoicePaths []string `mapstructure:"voice_paths"`
	LabelPath  string   `mapstructure:"label_path"`
	OutputPath string   `mapstructure:"output_path"`
}

// SynthesisConfig seeds an engine.Condition. ApplyTo applies Speed,
// Volume, Alpha, Beta, AdditionalHalfTone and PhonemeAlignment through
// their Condition setters; MSDThreshold and GVWeight are not applied.
type SynthesisConfig struct {
	Speed              float64 `mapstructure:"speed"`
	Volume             float64 `mapstructure:"volume_db"`
	Alpha              float64 `mapstructure:"alpha"`
	Beta               float64 `mapstructure:"beta"`
	AdditionalHalfTone float64 `mapstructure:"additional_half_tone"`
	PhonemeAlignment   bool    `mapstructure:"phoneme_alignment"`
	MSDThreshold       float64 `mapstructure:"msd_threshold"`
	GVWeight           float64 `mapstructure:"gv_weight"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_secs"`
	MaxLabelBytes   int    `mapstructure:"max_label_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout_secs"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			VoicePaths: []string{"voices/default.htsvoice"},
			LabelPath:  "",
			OutputPath: "out.wav",
		},
		Synthesis: SynthesisConfig{
			Speed:              1.0,
			Volume:             0.0,
			Alpha:              0.0,
			Beta:               0.0,
			AdditionalHalfTone: 0.0,
			PhonemeAlignment:   false,
			MSDThreshold:       0.5,
			GVWeight:           1.0,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			ShutdownTimeout: 30,
			MaxLabelBytes:   65536,
			RequestTimeout:  60,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.StringSlice("paths-voice-paths", defaults.Paths.VoicePaths, "Voice files to load, in interpolation order")
	fs.String("label-path", defaults.Paths.LabelPath, "Path to a full-context label file (- for stdin)")
	fs.String("output-path", defaults.Paths.OutputPath, "Path to write the synthesized WAV file")
	fs.Float64("speed", defaults.Synthesis.Speed, "Speaking speed multiplier (>1 faster)")
	fs.Float64("volume", defaults.Synthesis.Volume, "Output volume in dB")
	fs.Float64("alpha", defaults.Synthesis.Alpha, "All-pass frequency warping constant")
	fs.Float64("beta", defaults.Synthesis.Beta, "Postfiltering coefficient")
	fs.Float64("half-tone", defaults.Synthesis.AdditionalHalfTone, "Additional pitch shift in half-tones")
	fs.Bool("phoneme-alignment", defaults.Synthesis.PhonemeAlignment, "Use label start/end times instead of estimating durations")
	fs.Float64("msd-threshold", defaults.Synthesis.MSDThreshold, "Voiced/unvoiced MSD probability threshold")
	fs.Float64("gv-weight", defaults.Synthesis.GVWeight, "Global variance postfilter weight (0 disables)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent synthesis requests for the serve command")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain timeout in seconds")
	fs.Int("max-label-bytes", defaults.Server.MaxLabelBytes, "Maximum POST /synthesize label size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis timeout in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("HTSVOICE")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("htsvoice")
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

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.voice_paths", c.Paths.VoicePaths)
	v.SetDefault("paths.label_path", c.Paths.LabelPath)
	v.SetDefault("paths.output_path", c.Paths.OutputPath)
	v.SetDefault("synthesis.speed", c.Synthesis.Speed)
	v.SetDefault("synthesis.volume_db", c.Synthesis.Volume)
	v.SetDefault("synthesis.alpha", c.Synthesis.Alpha)
	v.SetDefault("synthesis.beta", c.Synthesis.Beta)
	v.SetDefault("synthesis.additional_half_tone", c.Synthesis.AdditionalHalfTone)
	v.SetDefault("synthesis.phoneme_alignment", c.Synthesis.PhonemeAlignment)
	v.SetDefault("synthesis.msd_threshold", c.Synthesis.MSDThreshold)
	v.SetDefault("synthesis.gv_weight", c.Synthesis.GVWeight)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout_secs", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_label_bytes", c.Server.MaxLabelBytes)
	v.SetDefault("server.request_timeout_secs", c.Server.RequestTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.voice_paths", "paths-voice-paths")
	v.RegisterAlias("paths.label_path", "label-path")
	v.RegisterAlias("paths.output_path", "output-path")
	v.RegisterAlias("synthesis.speed", "speed")
	v.RegisterAlias("synthesis.volume_db", "volume")
	v.RegisterAlias("synthesis.alpha", "alpha")
	v.RegisterAlias("synthesis.beta", "beta")
	v.RegisterAlias("synthesis.additional_half_tone", "half-tone")
	v.RegisterAlias("synthesis.phoneme_alignment", "phoneme-alignment")
	v.RegisterAlias("synthesis.msd_threshold", "msd-threshold")
	v.RegisterAlias("synthesis.gv_weight", "gv-weight")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "workers")
	v.RegisterAlias("server.shutdown_timeout_secs", "shutdown-timeout")
	v.RegisterAlias("server.max_label_bytes", "max-label-bytes")
	v.RegisterAlias("server.request_timeout_secs", "request-timeout")
	v.RegisterAlias("log_level", "log-level")
}

// ConditionSetter is the subset of engine.Condition's setters that a
// SynthesisConfig can seed, kept as an interface so this package never
// needs to import the engine package.
type ConditionSetter interface {
	SetSpeed(float64)
	SetVolume(float64)
	SetAlpha(float64)
	SetBeta(float64)
	SetAdditionalHalfTone(float64)
	SetPhonemeAlignmentFlag(bool)
}

// ApplyTo pushes the loaded synthesis settings onto a Condition.
func (s SynthesisConfig) ApplyTo(c ConditionSetter) {
	c.SetSpeed(s.Speed)
	c.SetVolume(s.Volume)
	c.SetAlpha(s.Alpha)
	c.SetBeta(s.Beta)
	c.SetAdditionalHalfTone(s.AdditionalHalfTone)
	c.SetPhonemeAlignmentFlag(s.PhonemeAlignment)
}
