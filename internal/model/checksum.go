package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var shaHexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// IsSHA256Hex reports whether v looks like a lowercase hex SHA-256 digest.
func IsSHA256Hex(v string) bool {
	return shaHexPattern.MatchString(v)
}

// FileSHA256 returns the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file for checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum compares the file at path against a pinned digest.
func VerifyChecksum(path, expected string) error {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if !IsSHA256Hex(expected) {
		return fmt.Errorf("pinned checksum %q is not a sha256 hex digest", expected)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat model file: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("expected file at %s, found directory", path)
	}

	actual, err := FileSHA256(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", path, actual, expected)
	}
	return nil
}
