package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cinematch/internal/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidate_ValidArtifact(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"titles":["Heat","Ronin"],"similarity":[[1,0.8],[0.8,1]]}`)
	core, logs := observer.New(zap.InfoLevel)

	if err := validate(path, zap.New(core)); err != nil {
		t.Fatalf("validate: %v", err)
	}
	entries := logs.FilterMessage("Artifact is valid").All()
	if len(entries) != 1 {
		t.Fatalf("expected one validation log, got %v", logs.All())
	}
	if got := entries[0].ContextMap()["movies"]; got != int64(2) {
		t.Errorf("movies = %v, want 2", got)
	}
}

func TestValidate_InvalidArtifact(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"titles":["Heat"],"similarity":[[1,0.5]]}`)
	if err := validate(path, zap.NewNop()); err == nil {
		t.Fatal("expected error for non-square similarity matrix")
	}
}

func TestValidate_MissingFile(t *testing.T) {
	if err := validate(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop()); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestPublish_MissingFileFailsBeforeRedis(t *testing.T) {
	cfg := config.CatalogConfig{Redis: config.CatalogRedisConfig{Addrs: []string{"127.0.0.1:1"}}}
	err := publish(context.Background(), cfg, filepath.Join(t.TempDir(), "absent.json"), "k", zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}
