package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/uninav/navcore/internal/utils"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Suggest.Enabled {
		t.Error("suggestions disabled by default")
	}
	if cfg.Suggest.MaxResults != 5 {
		t.Errorf("MaxResults = %d", cfg.Suggest.MaxResults)
	}
	if cfg.Suggest.MinCharacters != 1 {
		t.Errorf("MinCharacters = %d", cfg.Suggest.MinCharacters)
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d", cfg.History.MaxEntries)
	}
	if cfg.Cache.Size != 512 {
		t.Errorf("Cache.Size = %d", cfg.Cache.Size)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !utils.FileExists(path) {
		t.Error("config file was not created")
	}
	if cfg.Suggest.MaxResults != 5 {
		t.Errorf("MaxResults = %d", cfg.Suggest.MaxResults)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Suggest.MaxResults = 3
	cfg.History.MaxEntries = 20
	cfg.Remote.BaseURL = "https://staging.uninav.app/v1"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Suggest.MaxResults != 3 {
		t.Errorf("MaxResults = %d", loaded.Suggest.MaxResults)
	}
	if loaded.History.MaxEntries != 20 {
		t.Errorf("MaxEntries = %d", loaded.History.MaxEntries)
	}
	if loaded.Remote.BaseURL != "https://staging.uninav.app/v1" {
		t.Errorf("BaseURL = %s", loaded.Remote.BaseURL)
	}
}

func TestPartialParseRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	// max_results has the wrong type; the rest of the section is salvageable.
	content := `[suggest]
max_results = "plenty"
min_characters = 2

[cache]
size = 128
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Suggest.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want default 5", cfg.Suggest.MaxResults)
	}
	if cfg.Suggest.MinCharacters != 2 {
		t.Errorf("MinCharacters = %d, want 2", cfg.Suggest.MinCharacters)
	}
	if cfg.Cache.Size != 128 {
		t.Errorf("Cache.Size = %d, want 128", cfg.Cache.Size)
	}
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")

	cfg := DefaultConfig()
	cfg.Suggest.MaxResults = 2
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, activePath, err := LoadConfigWithPriority(path)
	if err != nil {
		t.Fatal(err)
	}
	if activePath != path {
		t.Errorf("activePath = %s", activePath)
	}
	if loaded.Suggest.MaxResults != 2 {
		t.Errorf("MaxResults = %d", loaded.Suggest.MaxResults)
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	maxResults := 4
	enabled := false
	if err := cfg.Update(path, &maxResults, nil, &enabled); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Suggest.MaxResults != 4 || loaded.Suggest.Enabled {
		t.Errorf("loaded = %+v", loaded.Suggest)
	}
	if loaded.Suggest.MinCharacters != 1 {
		t.Errorf("MinCharacters = %d, untouched field changed", loaded.Suggest.MinCharacters)
	}
}
