package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"log_level"`
}

type PathsConfig struct {
	ModelPath   string `mapstructure:"model_path"`
	ModelSHA256 string `mapstructure:"model_sha256"`
}

type TokenizerConfig struct {
	PredictTags      bool   `mapstructure:"predict_tags"`
	WsConst          string `mapstructure:"wsconst"`
	Normalize        bool   `mapstructure:"normalize"`
	ModelFormat      string `mapstructure:"model_format"`
	SurfaceCacheSize int    `mapstructure:"surface_cache_size"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
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
			ModelPath:   "models/model.zst",
			ModelSHA256: "",
		},
		Tokenizer: TokenizerConfig{
			PredictTags:      false,
			WsConst:          "",
			Normalize:        true,
			ModelFormat:      ModelFormatZstd,
			SurfaceCacheSize: 4096,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         4,
			MaxTextBytes:    65536,
			RequestTimeout:  30,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

// flagKeys maps each config key to the flag that overrides it.
var flagKeys = []struct {
	key  string
	flag string
}{
	{"paths.model_path", "paths-model-path"},
	{"paths.model_sha256", "paths-model-sha256"},
	{"tokenizer.predict_tags", "tokenizer-predict-tags"},
	{"tokenizer.wsconst", "tokenizer-wsconst"},
	{"tokenizer.normalize", "tokenizer-normalize"},
	{"tokenizer.model_format", "tokenizer-model-format"},
	{"tokenizer.surface_cache_size", "tokenizer-surface-cache-size"},
	{"server.listen_addr", "server-listen-addr"},
	{"server.workers", "workers"},
	{"server.max_text_bytes", "max-text-bytes"},
	{"server.request_timeout", "request-timeout"},
	{"server.shutdown_timeout", "shutdown-timeout"},
	{"log_level", "log-level"},
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-model-path", defaults.Paths.ModelPath, "Path to the compressed model or legacy dictionary")
	fs.String("paths-model-sha256", defaults.Paths.ModelSHA256, "Expected SHA-256 of the model file")
	fs.Bool("tokenizer-predict-tags", defaults.Tokenizer.PredictTags, "Predict tags for each token")
	fs.String("tokenizer-wsconst", defaults.Tokenizer.WsConst, "Boundary constraints: any of D R H T K O G")
	fs.Bool("tokenizer-normalize", defaults.Tokenizer.Normalize, "Normalize text to full-width before prediction")
	fs.String("tokenizer-model-format", defaults.Tokenizer.ModelFormat, "Model format: zstd|legacy")
	fs.Int("tokenizer-surface-cache-size", defaults.Tokenizer.SurfaceCacheSize, "Capacity of the non-dictionary surface cache (0 disables)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Number of pooled tokenizer sessions")
	fs.Int("max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Request timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("WAKATI")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("paths.model_path", "WAKATI_PATHS_MODEL_PATH", "WAKATI_MODEL"); err != nil {
		return Config{}, fmt.Errorf("bind model env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("wakati")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	format, err := NormalizeModelFormat(cfg.Tokenizer.ModelFormat)
	if err != nil {
		return Config{}, err
	}
	cfg.Tokenizer.ModelFormat = format

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("paths.model_sha256", c.Paths.ModelSHA256)
	v.SetDefault("tokenizer.predict_tags", c.Tokenizer.PredictTags)
	v.SetDefault("tokenizer.wsconst", c.Tokenizer.WsConst)
	v.SetDefault("tokenizer.normalize", c.Tokenizer.Normalize)
	v.SetDefault("tokenizer.model_format", c.Tokenizer.ModelFormat)
	v.SetDefault("tokenizer.surface_cache_size", c.Tokenizer.SurfaceCacheSize)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

// bindFlags binds every registered config flag present in fs to its key.
// Flags a command does not define are skipped.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("%s: %w", fk.flag, err)
		}
	}
	return nil
}
