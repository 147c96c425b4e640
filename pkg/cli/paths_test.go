package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	p := &Paths{HomeDir: home}

	if got, want := p.BaseDir(), filepath.Join(home, ".guardian"); got != want {
		t.Errorf("BaseDir = %q, want %q", got, want)
	}
	if got, want := p.ConfigFile(), filepath.Join(home, ".guardian", "config.yaml"); got != want {
		t.Errorf("ConfigFile = %q, want %q", got, want)
	}
	if got, want := p.LogPath("session.log"), filepath.Join(home, ".guardian", "logs", "session.log"); got != want {
		t.Errorf("LogPath = %q, want %q", got, want)
	}
	if got, want := p.NotePath("note.yaml"), filepath.Join(home, ".guardian", "notes", "note.yaml"); got != want {
		t.Errorf("NotePath = %q, want %q", got, want)
	}
}

func TestPathsEnsure(t *testing.T) {
	p := &Paths{HomeDir: t.TempDir()}

	if err := p.EnsureLogDir(); err != nil {
		t.Fatalf("EnsureLogDir: %v", err)
	}
	if err := p.EnsureNotesDir(); err != nil {
		t.Fatalf("EnsureNotesDir: %v", err)
	}
	for _, dir := range []string{p.BaseDir(), p.LogDir(), p.NotesDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}
