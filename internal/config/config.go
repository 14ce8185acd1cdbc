package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName           = "folderart"
	defaultMarkerName = "folder.jpg"
)

type Config struct {
	MusicDir   string `koanf:"music_dir"`   // library base; Artists/Albums/Tracks live under it
	ArtistsDir string `koanf:"artists_dir"` // override, default <music_dir>/Artists
	AlbumsDir  string `koanf:"albums_dir"`  // override, default <music_dir>/Albums
	TracksDir  string `koanf:"tracks_dir"`  // override, default <music_dir>/Tracks

	MarkerName string `koanf:"marker_name"` // per-directory cover image name
	Jobs       int    `koanf:"jobs"`        // parallel extraction workers
	Strategy   string `koanf:"strategy"`    // "auto", "metadata", or "descriptor"
	Notify     *bool  `koanf:"notify"`      // desktop notification on completion (default: true)
	FFmpegPath string `koanf:"ffmpeg_path"` // override, default resolved from PATH

	// Cover art settings
	Art ArtConfig `koanf:"art"`

	// Desktop session hints, captured from the environment at load
	// time so classification runs on explicit inputs.
	CurrentDesktop string `koanf:"-"`
	DesktopSession string `koanf:"-"`
}

// ArtConfig holds cover art extraction settings.
type ArtConfig struct {
	MaxDimension int `koanf:"max_dimension"` // downscale bound in px, 0 = keep original size
	JPEGQuality  int `koanf:"jpeg_quality"`  // 1-100 (default: 90)
}

// Load reads configuration from path when non-empty, otherwise from
// the search list (last wins).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	paths := getConfigPaths()
	if path != "" {
		// An explicitly requested config file must exist.
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		paths = []string{path}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		MarkerName: defaultMarkerName,
		Jobs:       1,
		Strategy:   "auto",
		Art: ArtConfig{
			MaxDimension: 1024,
			JPEGQuality:  90,
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in all path values
	cfg.MusicDir = expandPath(cfg.MusicDir)
	cfg.ArtistsDir = expandPath(cfg.ArtistsDir)
	cfg.AlbumsDir = expandPath(cfg.AlbumsDir)
	cfg.TracksDir = expandPath(cfg.TracksDir)
	cfg.FFmpegPath = expandPath(cfg.FFmpegPath)

	cfg.CurrentDesktop = os.Getenv("XDG_CURRENT_DESKTOP")
	cfg.DesktopSession = os.Getenv("DESKTOP_SESSION")

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/folderart/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// ArtistsRoot returns the directory holding artist folders.
func (c *Config) ArtistsRoot() string {
	if c.ArtistsDir != "" {
		return c.ArtistsDir
	}
	return filepath.Join(c.MusicDir, "Artists")
}

// AlbumsRoot returns the directory receiving flattened album links.
func (c *Config) AlbumsRoot() string {
	if c.AlbumsDir != "" {
		return c.AlbumsDir
	}
	return filepath.Join(c.MusicDir, "Albums")
}

// TracksRoot returns the directory receiving flattened track links.
func (c *Config) TracksRoot() string {
	if c.TracksDir != "" {
		return c.TracksDir
	}
	return filepath.Join(c.MusicDir, "Tracks")
}

// JobCount returns the number of parallel extraction workers, at least 1.
func (c *Config) JobCount() int {
	if c.Jobs <= 0 {
		return 1
	}
	return c.Jobs
}

// NotifyEnabled reports whether to send a desktop notification on
// completion. Defaults to true when unset.
func (c *Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}
