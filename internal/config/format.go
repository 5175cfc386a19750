package config

import (
	"fmt"
	"strings"
)

const (
	ModelFormatZstd   = "zstd"
	ModelFormatLegacy = "legacy"
)

func NormalizeModelFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		format = ModelFormatZstd
	}
	switch format {
	case ModelFormatZstd, ModelFormatLegacy:
		return format, nil
	case "zst", "model":
		return ModelFormatZstd, nil
	case "txt", "dict":
		return ModelFormatLegacy, nil
	default:
		return "", fmt.Errorf(
			"invalid model format %q (expected %s|%s)",
			raw,
			ModelFormatZstd,
			ModelFormatLegacy,
		)
	}
}
