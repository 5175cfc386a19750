package model

import (
	"fmt"
	"os"
)

// LoadFile reads and decodes the model at path. legacy selects the line
// dictionary format instead of the compressed container.
func LoadFile(path string, legacy bool) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	if legacy {
		return DecodeLegacy(data)
	}
	return Decode(data)
}
