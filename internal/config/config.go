package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Replays  ReplayConfig   `yaml:"replays"`
	Media    MediaConfig    `yaml:"media"`
	Maps     MapConfig      `yaml:"maps"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ReplayConfig controls where replays and map archives are looked up
type ReplayConfig struct {
	Directories  []string `yaml:"directories"`
	Exclude      []string `yaml:"exclude"`
	FollowLinks  bool     `yaml:"follow_links"`
	Depth        int      `yaml:"depth"` // defaults to 10; negative means unlimited
	MapCacheDirs []string `yaml:"map_cache_dirs"`
	MinimapDir   string   `yaml:"minimap_dir"`
}

// MediaConfig holds where thumbnails are written and served from
type MediaConfig struct {
	Root         string `yaml:"root"`
	URLPrefix    string `yaml:"url_prefix"`
	ThumbnailMax int    `yaml:"thumbnail_max"` // longest thumbnail side in pixels; 0 keeps the original size
}

// MapConfig holds map name normalisation settings
type MapConfig struct {
	StripPrefixes []string `yaml:"strip_prefixes"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	PageSize   int    `yaml:"page_size"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// MapsDir is where map thumbnails are stored.
func (c *Config) MapsDir() string {
	return filepath.Join(c.Media.Root, "maps")
}

// MapsURL is the URL prefix of stored map thumbnails.
func (c *Config) MapsURL() string {
	return c.Media.URLPrefix + "maps/"
}

// Load reads configuration from a YAML file, applies defaults and then
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	home := userHome()
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(home, ".zeratul", "zeratul.db")
	}
	if c.Replays.Depth == 0 {
		c.Replays.Depth = 10
	}
	if c.Replays.Exclude == nil {
		c.Replays.Exclude = []string{"Customs"}
	}
	if c.Media.Root == "" {
		c.Media.Root = filepath.Join(home, ".zeratul", "media")
	}
	if c.Media.URLPrefix == "" {
		c.Media.URLPrefix = "/media/"
	}
	if c.Maps.StripPrefixes == nil {
		c.Maps.StripPrefixes = []string{"[League] "}
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1:8080"
	}
	if c.Server.PageSize == 0 {
		c.Server.PageSize = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("ZERATUL_DB_PATH", c.Database.Path)
	c.Media.Root = getEnv("ZERATUL_MEDIA_ROOT", c.Media.Root)
	c.Server.ListenAddr = getEnv("ZERATUL_LISTEN_ADDR", c.Server.ListenAddr)
	c.Log.Level = getEnv("ZERATUL_LOG_LEVEL", c.Log.Level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
