package appdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Name is the directory name used under every base directory
const Name = "tmedia"

// Dirs holds the per-user locations tmedia reads and writes
type Dirs struct {
	ConfigPath  string
	CachePath   string
	GalleryPath string // Generated HTML galleries
}

// New resolves XDG-compliant paths
func New() (*Dirs, error) {
	configPath, configErr := getConfigPath()
	cacheRoot, cacheErr := getCacheRoot()
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}
	if cacheErr != nil {
		return nil, fmt.Errorf("failed to determine cache root: %w", cacheErr)
	}

	return &Dirs{
		ConfigPath:  configPath,
		CachePath:   cacheRoot,
		GalleryPath: filepath.Join(cacheRoot, "galleries"),
	}, nil
}

// getCacheRoot follows the XDG Base Directory specification on Unix and uses
// LocalAppData on Windows
func getCacheRoot() (string, error) {
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return filepath.Join(xdgCacheHome, Name), nil
	}

	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		return filepath.Join(localAppData, Name, "cache"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Fall back to ~/.cache/tmedia
	return filepath.Join(homeDir, ".cache", Name), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, Name, "config.yaml"), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, Name, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Fall back to ~/.config/tmedia/config.yaml
	return filepath.Join(homeDir, ".config", Name, "config.yaml"), nil
}

// Initialize creates the cache directories if they don't exist
func (d *Dirs) Initialize() error {
	for _, dir := range []string{d.CachePath, d.GalleryPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GalleryFile returns the HTML gallery path for a ticket and search term
func (d *Dirs) GalleryFile(ticketID, term string) string {
	name := "ticket-" + sanitize(ticketID)
	if term = sanitize(term); term != "" {
		name += "-" + term
	}
	return filepath.Join(d.GalleryPath, name+".html")
}

// CleanCache removes all files in the cache directory
func (d *Dirs) CleanCache() error {
	entries, err := os.ReadDir(d.CachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(d.CachePath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return nil
}

// sanitize keeps a term usable as part of a file name
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}
