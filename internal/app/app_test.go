package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodlog/internal/config"
	"foodlog/internal/tracker"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("profile-1", base)
	cfg.Timezone = "UTC"
	cfg.Vaults = []config.VaultConfig{{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(base, "vault")}}
	cfg.Encryption.Type = "test"
	return cfg
}

func TestNew_LogAndReadBack(t *testing.T) {
	cfg := newTestConfig(t)

	a, err := New(cfg, "log")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	entry, err := a.LogText("grilled chicken", 2)
	if err != nil {
		t.Fatalf("LogText() error = %v", err)
	}
	if entry.Food.Name != "Grilled Chicken Salad" || entry.Calories != 700 {
		t.Errorf("LogText() = %s %v kcal", entry.Food.Name, entry.Calories)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(cfg.Storage.Path); err != nil {
		t.Errorf("log file not written: %v", err)
	}
	logData, err := os.ReadFile(filepath.Join(cfg.LogDir, "foodlog.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(logData), "entry logged") {
		t.Errorf("log file missing entry line: %q", logData)
	}

	b, err := New(cfg, "entries")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()
	entries, err := b.ListEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("ListEntries() = %d entries, want 1", len(entries))
	}
}

func TestNew_Location(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Timezone = "Asia/Tokyo"

	a, err := New(cfg, "entries")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if got := a.Location().String(); got != "Asia/Tokyo" {
		t.Errorf("Location() = %q, want Asia/Tokyo", got)
	}
}

func TestNew_SQLiteStorage(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Storage = config.StorageConfig{Type: "sqlite", Path: filepath.Join(cfg.BaseDir, "foodlog.db")}

	a, err := New(cfg, "log")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if _, err := a.LogByName("banana", 1); err != nil {
		t.Fatalf("LogByName() error = %v", err)
	}
	days, err := a.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 1 || days[0].TotalCalories != 105 {
		t.Errorf("Summary() = %+v", days)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "bad scorer", mutate: func(c *config.Config) { c.Dataset.Scorer = "psychic" }},
		{name: "bad timezone", mutate: func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
		{name: "bad storage", mutate: func(c *config.Config) { c.Storage.Type = "floppy" }},
		{name: "bad vault", mutate: func(c *config.Config) { c.Vaults[0].Type = "tape" }},
		{name: "bad encryption", mutate: func(c *config.Config) { c.Encryption.Type = "rot13" }},
		{name: "bad log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }},
		{name: "missing dataset", mutate: func(c *config.Config) { c.Dataset.Path = filepath.Join(c.BaseDir, "nope.json") }},
		{name: "invalid dataset", mutate: func(c *config.Config) {
			c.Dataset.Path = filepath.Join(c.BaseDir, "foods.json")
			_ = os.WriteFile(c.Dataset.Path, []byte(`[{"name":"Apple","calories":95},{"name":"apple","calories":-50}]`), 0644)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			tt.mutate(cfg)
			if a, err := New(cfg, "test"); err == nil {
				a.Close()
				t.Error("New() should fail")
			}
		})
	}
}

func TestNew_CustomDataset(t *testing.T) {
	cfg := newTestConfig(t)
	path := filepath.Join(cfg.BaseDir, "foods.yaml")
	yaml := "- name: Porridge\n  calories: 150\n  aliases: [oats]\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Dataset.Path = path

	a, err := New(cfg, "foods")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	foods, err := a.Foods()
	if err != nil {
		t.Fatal(err)
	}
	if len(foods) != 1 || foods[0].Name != "Porridge" {
		t.Errorf("Foods() = %+v", foods)
	}
}

func TestClose_AutoBackup(t *testing.T) {
	tests := []struct {
		name       string
		autoBackup bool
		mutate     bool
		wantBackup bool
	}{
		{name: "mutating command with auto backup", autoBackup: true, mutate: true, wantBackup: true},
		{name: "read-only command with auto backup", autoBackup: true, mutate: false, wantBackup: false},
		{name: "mutating command without auto backup", autoBackup: false, mutate: true, wantBackup: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.AutoBackup = tt.autoBackup

			a, err := New(cfg, "test")
			if err != nil {
				t.Fatal(err)
			}
			if tt.mutate {
				if _, err := a.LogByName("Banana", 1); err != nil {
					t.Fatal(err)
				}
			} else if _, err := a.ListEntries(); err != nil {
				t.Fatal(err)
			}
			if err := a.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			snapshot := filepath.Join(cfg.Vaults[0].FSVaultRoot, cfg.ProfileID, tracker.SnapshotName)
			_, err = os.Stat(snapshot)
			if gotBackup := err == nil; gotBackup != tt.wantBackup {
				t.Errorf("snapshot exists = %v, want %v", gotBackup, tt.wantBackup)
			}
		})
	}
}

func TestBackupRestore(t *testing.T) {
	cfg := newTestConfig(t)

	a, err := New(cfg, "log")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.LogByName("Banana", 2); err != nil {
		t.Fatal(err)
	}
	version, err := a.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Backup() version = %d, want 1", version)
	}
	a.Close()

	if err := os.Remove(cfg.Storage.Path); err != nil {
		t.Fatal(err)
	}

	b, err := New(cfg, "restore")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	doc, err := b.Restore("", false)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(doc.Entries) != 1 || doc.Entries[0].Calories != 210 {
		t.Errorf("Restore() = %+v", doc.Entries)
	}

	var buf bytes.Buffer
	raw, err := os.ReadFile(filepath.Join(cfg.Vaults[0].FSVaultRoot, cfg.ProfileID, tracker.SnapshotName))
	if err != nil {
		t.Fatal(err)
	}
	buf.Write(raw)
	if !bytes.HasPrefix(buf.Bytes(), []byte("FLENC")) {
		t.Error("vault snapshot is not encrypted")
	}
}

func TestSetupKeys_NoEncryption(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Encryption.Type = "none"

	a, err := New(cfg, "keys")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.EncryptionEnabled() {
		t.Error("EncryptionEnabled() = true for type none")
	}
	if err := a.SetupKeys("pass"); !errors.Is(err, ErrNoEncryption) {
		t.Errorf("SetupKeys() error = %v, want ErrNoEncryption", err)
	}
}

func TestSetupKeys_Age(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Encryption.Type = "age"

	a, err := New(cfg, "keys")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.KeysConfigured() {
		t.Error("KeysConfigured() = true before setup")
	}
	if err := a.SetupKeys("correct horse"); err != nil {
		t.Fatalf("SetupKeys() error = %v", err)
	}
	if !a.KeysConfigured() {
		t.Error("KeysConfigured() = false after setup")
	}
	if err := a.ValidateVault(); err != nil {
		t.Errorf("ValidateVault() error = %v", err)
	}
}
