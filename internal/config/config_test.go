package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadConfigCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()
	initialized = false

	_, err := ReadConfig()
	if err == nil {
		t.Fatal("expected an error on first run without config.json")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("expected a template config.json to be written: %v", err)
	}
}

func TestReadConfigParsesFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()
	initialized = false

	data := `{"app_name":"pichat-server","app_port":9000,"admin_login":"root","storage":"file","db_path":"x.json","rate_limit_interval":"500ms"}`
	if err := os.WriteFile("config.json", []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppPort != 9000 {
		t.Errorf("expected app_port 9000, got %d", cfg.AppPort)
	}
	if cfg.AdminLogin != "root" {
		t.Errorf("expected admin_login root, got %s", cfg.AdminLogin)
	}
	if cfg.Storage != StorageFile {
		t.Errorf("expected storage file, got %s", cfg.Storage)
	}
}
