package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/HugoDaniel/glslkit/internal/pipeline"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "glslkit.toml")

	content := `
pipeline = ["simplify", "differentiate"]
param = "t"
dialect = "js"
log-level = 2
diff = true
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !reflect.DeepEqual(cfg.Pipeline, []string{"simplify", "differentiate"}) {
		t.Errorf("Pipeline: got %v", cfg.Pipeline)
	}
	if cfg.Param != "t" {
		t.Errorf("Param: got %q, want t", cfg.Param)
	}
	if cfg.Dialect != "js" {
		t.Errorf("Dialect: got %q, want js", cfg.Dialect)
	}
	if cfg.Verbosity(0) != 2 {
		t.Errorf("Verbosity: got %d, want 2", cfg.Verbosity(0))
	}
	if !cfg.ShowDiff() {
		t.Error("ShowDiff: got false, want true")
	}
}

func TestLoadFileSyntaxError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "glslkit.toml")
	if err := os.WriteFile(configPath, []byte("pipeline = [\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "shaders")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	// Config lives one level up from shaders
	configPath := filepath.Join(tmpDir, "project", "glslkit.toml")
	if err := os.WriteFile(configPath, []byte(`param = "x"`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if foundPath != configPath {
		t.Errorf("found config at %s, expected %s", foundPath, configPath)
	}
	if cfg.Param != "x" {
		t.Errorf("Param: got %q, want x", cfg.Param)
	}
}

func TestLoadNoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, path, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %v", cfg)
	}
	if path != "" {
		t.Errorf("expected empty path, got %s", path)
	}
}

func TestToOptions(t *testing.T) {
	trueVal := true
	cfg := &Config{
		Pipeline: []string{"simplify", "js"},
		Param:    "p",
		Minify:   &trueVal,
	}

	opts, err := cfg.ToOptions()
	if err != nil {
		t.Fatalf("ToOptions failed: %v", err)
	}
	want := []pipeline.Pass{pipeline.Simplify, pipeline.JS}
	if !reflect.DeepEqual(opts.Passes, want) {
		t.Errorf("Passes: got %v, want %v", opts.Passes, want)
	}
	if opts.Param != "p" {
		t.Errorf("Param: got %q, want p", opts.Param)
	}
	if !opts.MinifyWhitespace {
		t.Error("MinifyWhitespace: got false, want true")
	}
}

func TestToOptionsMinifyIdentifiers(t *testing.T) {
	trueVal := true
	cfg := &Config{MinifyIdentifiers: &trueVal, KeepNames: []string{"uv"}}
	opts, err := cfg.ToOptions()
	if err != nil {
		t.Fatalf("ToOptions failed: %v", err)
	}
	if !opts.MinifyIdentifiers {
		t.Error("MinifyIdentifiers: got false, want true")
	}
	if !reflect.DeepEqual(opts.KeepNames, []string{"uv"}) {
		t.Errorf("KeepNames: got %v, want [uv]", opts.KeepNames)
	}

	falseVal := false
	opts, err = cfg.Merge(MergeOptions{MinifyIdentifiers: &falseVal})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if opts.MinifyIdentifiers {
		t.Error("MinifyIdentifiers: CLI should override the config")
	}
}

func TestToOptionsNil(t *testing.T) {
	var cfg *Config
	opts, err := cfg.ToOptions()
	if err != nil {
		t.Fatalf("ToOptions failed: %v", err)
	}
	if len(opts.Passes) != 0 {
		t.Errorf("Passes: got %v, want none", opts.Passes)
	}
}

func TestToOptionsUnknown(t *testing.T) {
	if _, err := (&Config{Pipeline: []string{"optimize"}}).ToOptions(); err == nil {
		t.Error("expected error for unknown pass")
	}
	if _, err := (&Config{Dialect: "wgsl"}).ToOptions(); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

func TestMerge(t *testing.T) {
	cfg := &Config{
		Pipeline: []string{"simplify"},
		Param:    "x",
	}

	list := "differentiate,simplify"
	param := "y"
	opts, err := cfg.Merge(MergeOptions{Pipeline: &list, Param: &param})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// CLI should win
	want := []pipeline.Pass{pipeline.Differentiate, pipeline.Simplify}
	if !reflect.DeepEqual(opts.Passes, want) {
		t.Errorf("Passes: got %v, want %v", opts.Passes, want)
	}
	if opts.Param != "y" {
		t.Errorf("Param: got %q, want y (CLI override)", opts.Param)
	}
}

func TestMergeKeepsConfig(t *testing.T) {
	cfg := &Config{Param: "x"}
	opts, err := cfg.Merge(MergeOptions{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if opts.Param != "x" {
		t.Errorf("Param: got %q, want x", opts.Param)
	}
}

func TestMergeRejectsMisplacedJS(t *testing.T) {
	list := "js,simplify"
	if _, err := (&Config{}).Merge(MergeOptions{Pipeline: &list}); err == nil {
		t.Error("expected error when js is not the last pass")
	}
}

func TestConfigFileNames(t *testing.T) {
	tmpDir := t.TempDir()

	// .glslkit.toml is the second choice
	rcPath := filepath.Join(tmpDir, ".glslkit.toml")
	if err := os.WriteFile(rcPath, []byte(`param = "hidden"`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if filepath.Base(foundPath) != ".glslkit.toml" {
		t.Errorf("expected .glslkit.toml, got %s", filepath.Base(foundPath))
	}

	// glslkit.toml has higher priority
	mainPath := filepath.Join(tmpDir, "glslkit.toml")
	if err := os.WriteFile(mainPath, []byte(`param = "main"`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Base(foundPath) != "glslkit.toml" {
		t.Errorf("expected glslkit.toml (higher priority), got %s", filepath.Base(foundPath))
	}
	if cfg.Param != "main" {
		t.Errorf("Param: got %q, want main", cfg.Param)
	}
}
