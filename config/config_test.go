package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	conf := Default()

	if conf.Port != DefaultPort {
		t.Errorf("expected default port %d, got %d", DefaultPort, conf.Port)
	}
	if time.Duration(conf.CacheDuration) != 15*time.Minute {
		t.Errorf("expected 15m cache duration, got %v", time.Duration(conf.CacheDuration))
	}
	if len(conf.Sources) == 0 {
		t.Fatal("expected a stock source registry")
	}
	for _, s := range conf.Sources {
		if s.Name == "" || s.URL == "" {
			t.Errorf("incomplete source in defaults: %+v", s)
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")

	want := Default()
	want.Port = 4000
	want.CacheDuration = Duration(5 * time.Minute)
	want.Filter.ExcludePatterns = []string{"(?i)sponsored"}

	if err := Write(cfgPath, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(cfgPath)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Port != 4000 {
		t.Errorf("port = %d, want 4000", got.Port)
	}
	if time.Duration(got.CacheDuration) != 5*time.Minute {
		t.Errorf("cache duration = %v, want 5m", time.Duration(got.CacheDuration))
	}
	if len(got.Filter.ExcludePatterns) != 1 || got.Filter.ExcludePatterns[0] != "(?i)sponsored" {
		t.Errorf("filter rules lost in round trip: %+v", got.Filter)
	}
	if len(got.Sources) != len(want.Sources) {
		t.Errorf("sources = %d, want %d", len(got.Sources), len(want.Sources))
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.toml"))
	if !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestPortEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8080")

	conf := Default()
	if conf.Port != 8080 {
		t.Errorf("expected PORT env to win, got %d", conf.Port)
	}

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	onDisk := Default()
	onDisk.Port = 4000
	if err := Write(cfgPath, onDisk); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(cfgPath)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.Port != 8080 {
		t.Errorf("expected PORT env to override the file, got %d", got.Port)
	}
}

func TestPortEnvIgnoredWhenInvalid(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if conf := Default(); conf.Port != DefaultPort {
		t.Errorf("expected invalid PORT to be ignored, got %d", conf.Port)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if time.Duration(d) != 90*time.Second {
		t.Errorf("parsed %v, want 90s", time.Duration(d))
	}

	text, err := Duration(15 * time.Minute).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "15m0s" {
		t.Errorf("marshaled %q, want 15m0s", text)
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
