package text

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds engine-level tunables. Zero-valued fields select the
// package defaults; [DefaultConfig] returns them spelled out.
type Config struct {
	// ScratchBlockSize is the minimum size of a newly allocated heap
	// scratch block. Zero uses the package default.
	ScratchBlockSize int `json:"scratch_block_size,omitempty"` //nolint:tagliatelle // snake_case config file

	// MaxScratchBytes caps total scratch allocation across the text's
	// lifetime; 0 means unlimited. Insert fails with [ErrOutOfMemory]
	// once a new scratch block would exceed it.
	MaxScratchBytes int `json:"max_scratch_bytes,omitempty"` //nolint:tagliatelle

	// DisableNewlineDetection, when true, forces [NewlineLF] regardless
	// of the loaded file's actual line endings.
	DisableNewlineDetection bool `json:"disable_newline_detection,omitempty"` //nolint:tagliatelle
}

// DefaultConfig returns the engine's default tunables.
func DefaultConfig() Config {
	return Config{
		ScratchBlockSize: defaultScratchBlockSize,
	}
}

// LoadConfig reads a JWCC (JSON-with-comments) config file from path,
// applying its values on top of [DefaultConfig]. A missing file
// returns the defaults with no error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path supplied by caller
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("%w: read %q: %w", ErrIOError, path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid JWCC in %q: %w", ErrFormatError, path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %q: %w", ErrFormatError, path, err)
	}

	return cfg, nil
}

// LoadWithConfig is [Load] parameterized by engine tunables instead of
// the package defaults.
func LoadWithConfig(path string, cfg Config) (*Text, error) {
	t, err := loadWithFS(path, nil)
	if err != nil {
		return nil, err
	}

	if cfg.MaxScratchBytes > 0 {
		t.blocks.maxScratch = cfg.MaxScratchBytes
	}

	if cfg.ScratchBlockSize > 0 {
		t.blocks.blockSize = cfg.ScratchBlockSize
	}

	if cfg.DisableNewlineDetection {
		t.newline = NewlineLF
	}

	return t, nil
}
