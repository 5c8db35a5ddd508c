package config

import (
	"os"
	"path/filepath"
	"testing"

	"breastcrop/pkg/tissue"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}
	if cfg.Crop.StrictDecompression {
		t.Errorf("Strict decompression should be off by default")
	}
	if cfg.TissueLabels() != tissue.Default() {
		t.Errorf("Default config should use the default label table")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default config, got level %q", cfg.Logging.Level)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breastcrop.yaml")
	data := `crop:
  strictDecompression: true
  compressionLevel: 9
labels:
  paddle: 60
logging:
  level: debug
output:
  summary: false
  verbose: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Crop.StrictDecompression || cfg.Crop.CompressionLevel != 9 {
		t.Errorf("Crop section not applied: %+v", cfg.Crop)
	}
	if cfg.Output.Summary || !cfg.Output.Verbose {
		t.Errorf("Output section not applied: %+v", cfg.Output)
	}
	labels := cfg.TissueLabels()
	if labels.Paddle != 60 || labels.Background != 0 || labels.Gland != 29 {
		t.Errorf("Unexpected labels %+v", labels)
	}
	// keys not in the file keep their defaults
	if cfg.Logging.MaxSize != 100 {
		t.Errorf("Expected default maxSize, got %d", cfg.Logging.MaxSize)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"level":  "logging:\n  level: loud\n",
		"gzip":   "crop:\n  compressionLevel: 12\n",
		"labels": "labels:\n  background: 50\n  paddle: 50\n",
		"yaml":   "crop: [",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestSaveAndCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "breastcrop.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Crop != def.Crop || cfg.Logging != def.Logging || cfg.Output != def.Output {
		t.Errorf("Saved defaults did not round trip: %+v", cfg)
	}
}
