package conf

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v2"
)

var (
	// KeyTrialLimit caps a full brute-force key search.
	KeyTrialLimit = 1 << 16
	// DetectTrialLimit caps the quick probe pass that runs before a full
	// search when no cached key matches.
	DetectTrialLimit = 1 << 14
	// KeyLogProgressEvery is the number of trials between progress records.
	KeyLogProgressEvery = 1 << 12

	// MaxBlobSize bounds a single decoded artifact. Anything bigger is a
	// corrupt stream or a wrong key that happened to inflate.
	MaxBlobSize = 64 * datasize.MB

	// SnapshotCodec selects compression for session snapshot blocks:
	// "none", "lz4" or "zstd".
	SnapshotCodec = "lz4"
)

type fileConfig struct {
	KeyTrialLimit    *int   `yaml:"key_trial_limit"`
	DetectTrialLimit *int   `yaml:"detect_trial_limit"`
	MaxBlobSize      string `yaml:"max_blob_size"`
	SnapshotCodec    string `yaml:"snapshot_codec"`
}

// Load overlays settings from a YAML file onto the package defaults.
func Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	fc := fileConfig{}
	if err := yaml.UnmarshalStrict(raw, &fc); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}

	if fc.KeyTrialLimit != nil {
		if *fc.KeyTrialLimit <= 0 {
			return fmt.Errorf("config %q: key_trial_limit must be positive", path)
		}
		KeyTrialLimit = *fc.KeyTrialLimit
	}
	if fc.DetectTrialLimit != nil {
		if *fc.DetectTrialLimit <= 0 {
			return fmt.Errorf("config %q: detect_trial_limit must be positive", path)
		}
		DetectTrialLimit = *fc.DetectTrialLimit
	}
	if fc.MaxBlobSize != "" {
		var size datasize.ByteSize
		if err := size.UnmarshalText([]byte(fc.MaxBlobSize)); err != nil {
			return fmt.Errorf("config %q: max_blob_size: %w", path, err)
		}
		MaxBlobSize = size
	}
	if fc.SnapshotCodec != "" {
		switch fc.SnapshotCodec {
		case "none", "lz4", "zstd":
			SnapshotCodec = fc.SnapshotCodec
		default:
			return fmt.Errorf("config %q: unknown snapshot_codec %q", path, fc.SnapshotCodec)
		}
	}
	return nil
}
