package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test bake defaults
	if cfg.Bake.ReservedPrefix != "vrc." {
		t.Errorf("expected reserved prefix 'vrc.', got %s", cfg.Bake.ReservedPrefix)
	}
	if cfg.Bake.BakedPrefix != "Baked " {
		t.Errorf("expected baked prefix 'Baked ', got %q", cfg.Bake.BakedPrefix)
	}

	// Test output defaults
	if cfg.Output.Suffix != ".baked" {
		t.Errorf("expected suffix '.baked', got %s", cfg.Output.Suffix)
	}
	if len(cfg.Output.Roots) != 0 {
		t.Errorf("expected no roots, got %v", cfg.Output.Roots)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
bake:
  reserved_prefix: "mmd."
  baked_prefix: "Cooked "

output:
  suffix: "-out"
  roots:
    - /srv/assets
  show_weights: false

logging:
  level: "debug"
  log_file: "bake.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	naming := cfg.Naming()
	if naming.ReservedPrefix != "mmd." {
		t.Errorf("expected reserved prefix 'mmd.', got %s", naming.ReservedPrefix)
	}
	if got := naming.BakedName("Idle"); got != "Cooked Idle" {
		t.Errorf("expected baked name 'Cooked Idle', got %s", got)
	}

	if cfg.Output.Suffix != "-out" {
		t.Errorf("expected suffix '-out', got %s", cfg.Output.Suffix)
	}
	if len(cfg.Output.Roots) != 1 || cfg.Output.Roots[0] != "/srv/assets" {
		t.Errorf("expected roots [/srv/assets], got %v", cfg.Output.Roots)
	}
	if cfg.Output.ShowWeights {
		t.Error("expected show_weights to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "bake.log" {
		t.Errorf("expected log file 'bake.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "bake:\n  reserved_prefix: [unclosed\n  invalid syntax here\n"},
		{"empty prefix", "bake:\n  baked_prefix: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg := Default()
			if err := loadFromFile(cfg, configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}

	cfg := Default()
	err := loadFromFile(cfg, writeTemp(t, "bake:\n  reserved_prefix: \"\"\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Point the user config dir somewhere empty
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  suffix: .x\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name   string
		o      Overrides
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			o:    Overrides{Debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "log file flag",
			o:    Overrides{LogFile: "/tmp/bake.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/bake.log" {
					t.Errorf("expected log file /tmp/bake.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "roots append",
			o:    Overrides{Roots: []string{"a", "b"}},
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Output.Roots) != 2 || cfg.Output.Roots[1] != "b" {
					t.Errorf("expected roots [a b], got %v", cfg.Output.Roots)
				}
			},
		},
		{
			name: "zero overrides",
			o:    Overrides{},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "info" {
					t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.o.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := writeTemp(t, `
logging:
  level: warn
  log_file: file.log
`)

	// Flags override the config file
	cfg, err := Load(Overrides{ConfigPath: configPath, Debug: true})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Level should be from flag, not file
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug from flag, got %s", cfg.Logging.Level)
	}

	// Log file should be from file since no flag override
	if cfg.Logging.LogFile != "file.log" {
		t.Errorf("expected log file from file, got %s", cfg.Logging.LogFile)
	}

	// Untouched sections keep their defaults
	if cfg.Bake.BakedPrefix != "Baked " {
		t.Errorf("expected default baked prefix, got %q", cfg.Bake.BakedPrefix)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		suffix string
		input  string
		want   string
	}{
		{".baked", "avatar.yaml", "avatar.baked.yaml"},
		{".baked", filepath.Join("dir", "kitsune.yml"), filepath.Join("dir", "kitsune.baked.yml")},
		{"-out", "noext", "noext-out"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := OutputConfig{Suffix: tt.suffix}.Path(tt.input)
			if got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Output.Roots = []string{"/srv/assets"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Output.Roots[0] != "/srv/assets" || loaded.Bake.BakedPrefix != "Baked " {
		t.Errorf("saved config did not round-trip: %+v", loaded)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}
