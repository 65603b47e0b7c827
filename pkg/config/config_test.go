package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type sample struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "receitas")
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "name: ${SAMPLE_NAME}\nlevel: 2\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "receitas" || s.Level != 2 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "level: 2\n")

	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadOptionalMissingFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Level: 1}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found {
		t.Error("found = true for a missing file")
	}
	if s.Name != "default" || s.Level != 1 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptionalMissingFileStillValidates(t *testing.T) {
	var s sample
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err == nil {
		t.Fatal("invalid defaults should fail validation")
	}
}

func TestLoadOptionalOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "name: file\n")

	s := sample{Level: 4}
	found, err := LoadOptional(path, &s)
	if err != nil || !found {
		t.Fatalf("LoadOptional = %v, %v", found, err)
	}
	if s.Name != "file" || s.Level != 4 {
		t.Errorf("got %+v", s)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "name: one\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *sample, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() *sample { return &sample{Level: 7} }, func(s *sample, err error) {
			if err == nil {
				got <- s
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "name: two\n")

	select {
	case s := <-got:
		if s.Name != "two" || s.Level != 7 {
			t.Errorf("reloaded = %+v", s)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
}
