package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/example/go-wakati/internal/config"
	"github.com/example/go-wakati/internal/model"
)

// ErrEmptyPath is returned by LoadShared when no model path is configured.
var ErrEmptyPath = errors.New("model path is required")

// ConfigOptions translates the tokenizer section of cfg into options.
func ConfigOptions(cfg config.Config) []Option {
	return []Option{
		WithPredictTags(cfg.Tokenizer.PredictTags),
		WithWsConst(cfg.Tokenizer.WsConst),
		WithNormalize(cfg.Tokenizer.Normalize),
		WithSurfaceCacheSize(cfg.Tokenizer.SurfaceCacheSize),
	}
}

// LoadShared reads the configured model file and builds the read-only
// tokenizer state. A pinned checksum is verified before decoding. Options in
// extra are applied after the ones derived from cfg.
func LoadShared(cfg config.Config, extra ...Option) (*Shared, error) {
	path := strings.TrimSpace(cfg.Paths.ModelPath)
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := config.NormalizeModelFormat(cfg.Tokenizer.ModelFormat)
	if err != nil {
		return nil, err
	}

	if pin := strings.TrimSpace(cfg.Paths.ModelSHA256); pin != "" {
		if err := model.VerifyChecksum(path, pin); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	opts := append(ConfigOptions(cfg), extra...)
	if format == config.ModelFormatLegacy {
		return NewSharedFromLegacy(data, opts...)
	}
	return NewShared(data, opts...)
}
