package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// unsetEnv clears the given variables for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, ok := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if ok {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.Segmentation
	if s.MinArea != 1 || s.MinPath != 5 || s.MaxError != 30 || s.AbsMinScore != 1.5 {
		t.Errorf("segmentation: got %+v", s)
	}
	if s.Workers != runtime.NumCPU() {
		t.Errorf("workers: got %d, want %d", s.Workers, runtime.NumCPU())
	}
	if cfg.Encoding.MinMaskSize != 5 {
		t.Errorf("minMaskSize: got %d, want 5", cfg.Encoding.MinMaskSize)
	}
	if cfg.Model.MinSimilarity != 0.8 || cfg.Model.Candidates != 5 {
		t.Errorf("model: got %+v", cfg.Model)
	}
	if cfg.Debug() {
		t.Error("default level should not be debug")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Segmentation.MinPath != 5 {
		t.Errorf("got %+v, want defaults", cfg.Segmentation)
	}
	if _, err := LoadConfig(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}

func TestLoadConfig_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nuclei.yaml")
	doc := "segmentation:\n  minPath: 7\nencoding:\n  minMaskSize: 12\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Segmentation.MinPath != 7 || cfg.Encoding.MinMaskSize != 12 || !cfg.Debug() {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Segmentation.MaxError != 30 {
		t.Errorf("maxError: got %v, want the default 30", cfg.Segmentation.MaxError)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("segmentation: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config should fail")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nuclei.yaml")
	cfg := DefaultConfig()
	cfg.Channel.SmoothRadius = 1.5
	cfg.Model.Candidates = 3

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Channel.SmoothRadius != 1.5 || got.Model.Candidates != 3 {
		t.Errorf("got %+v, want saved values", got)
	}
}

func TestLoadEnv(t *testing.T) {
	unsetEnv(t, EnvLogLevel, EnvWorkers, EnvConfig)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "nuclei.yaml")
	if err := os.WriteFile(cfgPath, []byte("segmentation:\n  minPath: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, ".env")
	env := EnvConfig + "=" + cfgPath + "\n" + EnvWorkers + "=3\n" + EnvLogLevel + "=debug\n"
	if err := os.WriteFile(envPath, []byte(env), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEnv(envPath)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if cfg.Segmentation.MinPath != 9 || cfg.Segmentation.Workers != 3 || !cfg.Debug() {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadEnv_Errors(t *testing.T) {
	unsetEnv(t, EnvLogLevel, EnvWorkers, EnvConfig)
	if _, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("missing explicit env file should fail")
	}

	t.Setenv(EnvWorkers, "zero")
	if _, err := LoadEnv(); err == nil {
		t.Errorf("invalid %s should fail", EnvWorkers)
	}
}
