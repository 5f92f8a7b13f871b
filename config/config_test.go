package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.Derived.WorldW != 800 || cfg.Derived.WorldH != 800 {
		t.Errorf("expected 800x800 field, got %dx%d", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Agents.Count%cfg.Dispatch.AgentGroup != 0 {
		t.Errorf("default agent count %d not a multiple of group %d", cfg.Agents.Count, cfg.Dispatch.AgentGroup)
	}
	if cfg.Agents.Spawn != SpawnDisc {
		t.Errorf("expected default spawn %q, got %q", SpawnDisc, cfg.Agents.Spawn)
	}

	want := float32(30 * math.Pi / 180)
	if d := cfg.Derived.SensorAngleRad - want; d > 1e-6 || d < -1e-6 {
		t.Errorf("expected sensor angle %f rad, got %f", want, cfg.Derived.SensorAngleRad)
	}
	if cfg.Derived.MaxMemoryBytes != 4096<<20 {
		t.Errorf("unexpected memory limit %d", cfg.Derived.MaxMemoryBytes)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("world:\n  width: 0\n  height: 0\nscreen:\n  width: 320\n  height: 240\nagents:\n  spawn: spiral\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}

	// World falls back to screen size
	if cfg.Derived.WorldW != 320 || cfg.Derived.WorldH != 240 {
		t.Errorf("expected field to follow screen 320x240, got %dx%d", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Agents.Spawn != SpawnSpiral {
		t.Errorf("expected spiral spawn, got %q", cfg.Agents.Spawn)
	}
	// Untouched fields keep their defaults
	if cfg.Trail.DiffuseSpeed != 8.0 {
		t.Errorf("expected default diffuse speed, got %f", cfg.Trail.DiffuseSpeed)
	}
}

func TestLoadRejectsUnknownSpawn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  spawn: ring\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown spawn mode")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Motion.MoveSpeed = 12.5

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing snapshot: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if reloaded.Motion.MoveSpeed != 12.5 {
		t.Errorf("expected move speed 12.5 after reload, got %f", reloaded.Motion.MoveSpeed)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Dispatch.Tile != 8 {
		t.Errorf("expected tile 8, got %d", Cfg().Dispatch.Tile)
	}
}
