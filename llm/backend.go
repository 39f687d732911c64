package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrConfiguration   = errors.New("backend configuration error")
	ErrUnsupportedMode = errors.New("unsupported backend mode")
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case ModeLocal, ModeRemote:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
	}
}

type Config struct {
	Mode   Mode           `yaml:"mode"`
	Local  OllamaConfig   `yaml:"local"`
	Remote DeepSeekConfig `yaml:"remote"`
}

// SelectBackend builds the backend for the given mode. The remote API key
// is read from the environment here, so a missing key fails immediately.
func SelectBackend(mode Mode, cfg Config) (Backend, error) {
	switch mode {
	case ModeLocal:
		return NewOllamaClient(cfg.Local), nil

	case ModeRemote:
		remote := cfg.Remote
		if remote.APIKeyEnv == "" {
			remote.APIKeyEnv = DefaultDeepSeekAPIKeyEnv
		}
		if remote.APIKey == "" {
			remote.APIKey = os.Getenv(remote.APIKeyEnv)
		}

		client, err := NewDeepSeekClient(remote)
		if err != nil {
			return nil, err
		}

		return client, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}
