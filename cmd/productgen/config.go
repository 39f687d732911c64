package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/productgen"
	"github.com/flarexio/productgen/persistence/chromem"
	"github.com/flarexio/productgen/persistence/weaviate"
	"github.com/flarexio/productgen/vector"

	httpT "github.com/flarexio/productgen/transport/http"
)

type Config struct {
	productgen.Config `yaml:",inline"`

	HTTP httpT.RouterConfig `yaml:"http"`

	Path string `yaml:"-"`
}

// LoadConfig reads <path>/config.yaml over the defaults. A missing file
// leaves the defaults in place.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Config: productgen.DefaultConfig(),
		HTTP:   httpT.DefaultRouterConfig(),
	}

	f, err := os.Open(filepath.Join(path, "config.yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg.withDefaults(path), nil
		}

		return cfg, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}

	return cfg.withDefaults(path), nil
}

func (cfg Config) withDefaults(path string) Config {
	cfg.Path = path

	if cfg.Vector.Driver == "" {
		cfg.Vector.Driver = vector.DriverChromem
	}

	if cfg.Vector.Driver == vector.DriverChromem && cfg.Vector.Path == "" {
		cfg.Vector.Persistent = true
		cfg.Vector.Path = filepath.Join(path, "vectors")
	}

	if cfg.Vector.APIKey == "" {
		cfg.Vector.APIKey = os.Getenv("WEAVIATE_API_KEY")
	}

	return cfg
}

func Opener(driver vector.Driver) (vector.Opener, error) {
	switch driver {
	case vector.DriverChromem:
		return chromem.Opener(), nil

	case vector.DriverWeaviate:
		return weaviate.Opener(), nil

	default:
		return nil, errors.Join(vector.ErrUnsupportedDriver, errors.New(string(driver)))
	}
}

// NewLogger writes development logs to stderr, since stdout carries the
// interactive prompts, and tees JSON logs to a rotated file when set.
func NewLogger(logFile string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if logFile == "" {
		return cfg.Build()
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			cfg.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			cfg.Level,
		),
	)

	return zap.New(core, zap.AddCaller()), nil
}
