package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

func newConfigCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newConfigCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 20 || cfg.Height != 10 || cfg.Iterations != 2 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cfg, err := resolveConfig(newConfigCmd(t, "--preset", "banner", "--iterations", "6"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 40 || cfg.Pins.Mode != config.PinTopRow {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Iterations != 6 {
		t.Errorf("expected flag override to 6, got %d", cfg.Iterations)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloth.yaml")
	if err := os.WriteFile(path, []byte("width: 8\nheight: 4\nsolver: jacobi\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(newConfigCmd(t, "--config", path, "--height", "5"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 8 || cfg.Height != 5 || cfg.Solver != "jacobi" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Relaxation != config.DefaultRelaxation {
		t.Errorf("expected default relaxation to survive, got %v", cfg.Relaxation)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, err := resolveConfig(newConfigCmd(t, "--preset", "nope")); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := resolveConfig(newConfigCmd(t, "--relaxation", "1.5")); err == nil {
		t.Error("expected validation error")
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid("iterations=1,2,4; relaxation = 0.3,0.51")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[1] != "relaxation" {
		t.Fatalf("unexpected names %v", names)
	}
	if len(ranges[0]) != 3 || ranges[1][1] != 0.51 {
		t.Errorf("unexpected ranges %v", ranges)
	}

	for _, bad := range []string{"", "iterations", "iterations=a"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestPickParticle(t *testing.T) {
	idx, err := pickParticle(-1, 20, 10, 200)
	if err != nil || idx != 190 {
		t.Errorf("default particle = %d, %v; want 190", idx, err)
	}
	if idx, err := pickParticle(5, 20, 10, 200); err != nil || idx != 5 {
		t.Errorf("explicit particle = %d, %v", idx, err)
	}
	if _, err := pickParticle(200, 20, 10, 200); !errors.Is(err, dynamo.ErrParticleOutOfRange) {
		t.Errorf("expected ErrParticleOutOfRange, got %v", err)
	}
}
