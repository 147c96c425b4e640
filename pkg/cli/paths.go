package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the guardian directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base guardian directory (~/.guardian)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.guardian/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// LogDir returns the log directory (~/.guardian/logs)
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir(), "logs")
}

// NotesDir returns the directory where SOAP notes are saved
// (~/.guardian/notes)
func (p *Paths) NotesDir() string {
	return filepath.Join(p.BaseDir(), "notes")
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureLogDir creates the log directory if it doesn't exist
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0755)
}

// EnsureNotesDir creates the notes directory if it doesn't exist
func (p *Paths) EnsureNotesDir() error {
	return os.MkdirAll(p.NotesDir(), 0755)
}

// LogPath returns a path within the log directory
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}

// NotePath returns a path within the notes directory
func (p *Paths) NotePath(name string) string {
	return filepath.Join(p.NotesDir(), name)
}
