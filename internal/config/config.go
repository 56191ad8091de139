// Package config holds daemon-wide runtime configuration for tagfsd.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taggablefs/tagfs/internal/util"
)

// Default configuration values. See [Config] for field descriptions.
const (
	DefaultEndpointScheme = "tagfs"
	DefaultLogLevel       = util.InfoLevel
	DefaultTagView        = false
	DefaultEnableLogging  = false
)

// Config contains runtime configuration for the daemon.
type Config struct {
	MountPoint     string        // where the FUSE bridge should mount the tree
	RootDir        string        // storage root; metadata/ lives under it
	ProgramName    string        // passed through to the bridge
	TagView        bool          // present the tag graph instead of the folder tree
	EnableLogging  bool          // set by -log; the daemon writes no log file (see LogPath)
	LogLevel       util.LogLevel // verbosity of the structured logger
	EndpointScheme string        // filename prefix shared by the three transport endpoints
}

// ConfigOverride uses pointer fields to distinguish unset from zero-value
// when loading partial configuration from a file. See [Config] for field
// descriptions.
type ConfigOverride struct {
	MountPoint     *string        `yaml:"mount_point,omitempty" json:"mount_point,omitempty"`
	RootDir        *string        `yaml:"root_dir,omitempty" json:"root_dir,omitempty"`
	ProgramName    *string        `yaml:"program_name,omitempty" json:"program_name,omitempty"`
	TagView        *bool          `yaml:"tag_view,omitempty" json:"tag_view,omitempty"`
	EnableLogging  *bool          `yaml:"enable_logging,omitempty" json:"enable_logging,omitempty"`
	LogLevel       *util.LogLevel `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	EndpointScheme *string        `yaml:"endpoint_scheme,omitempty" json:"endpoint_scheme,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values. ProgramName
// defaults to "tagfsd" and MountPoint/RootDir are left blank for the caller
// to fill in, since they have no sane system-wide default.
func NewDefaultConfig() *Config {
	return &Config{
		ProgramName:    "tagfsd",
		TagView:        DefaultTagView,
		EnableLogging:  DefaultEnableLogging,
		LogLevel:       DefaultLogLevel,
		EndpointScheme: DefaultEndpointScheme,
	}
}

// Merge applies non-nil values from override onto this Config. This allows
// partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.MountPoint != nil {
		c.MountPoint = *override.MountPoint
	}
	if override.RootDir != nil {
		c.RootDir = *override.RootDir
	}
	if override.ProgramName != nil {
		c.ProgramName = *override.ProgramName
	}
	if override.TagView != nil {
		c.TagView = *override.TagView
	}
	if override.EnableLogging != nil {
		c.EnableLogging = *override.EnableLogging
	}
	if override.LogLevel != nil {
		c.LogLevel = *override.LogLevel
	}
	if override.EndpointScheme != nil {
		c.EndpointScheme = *override.EndpointScheme
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without
// merging. Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with
// defaults. This is a convenience function that combines NewDefaultConfig,
// LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

// MetadataDir returns the directory holding the database file, log file,
// and transport endpoint sockets.
func (c *Config) MetadataDir() string {
	return filepath.Join(c.RootDir, "metadata")
}

// DBPath returns the path of the backing database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.MetadataDir(), "fs.db")
}

// LogPath returns the path reserved for a log file under MetadataDir. The
// daemon does not open or write this file.
func (c *Config) LogPath() string {
	return filepath.Join(c.MetadataDir(), "log.txt")
}

// endpoint paths, named by suffix so all three share c.EndpointScheme.
const (
	endpointInbound = ".mgr"
	endpointBridge  = ".bridge"
	endpointCtl     = ".ctl"
)

// InboundEndpoint returns the socket path the daemon listens on.
func (c *Config) InboundEndpoint() string {
	return filepath.Join(c.MetadataDir(), c.EndpointScheme+endpointInbound)
}

// BridgeEndpoint returns the socket path the daemon writes bridge replies to.
func (c *Config) BridgeEndpoint() string {
	return filepath.Join(c.MetadataDir(), c.EndpointScheme+endpointBridge)
}

// CtlEndpoint returns the socket path the daemon writes operator replies to.
func (c *Config) CtlEndpoint() string {
	return filepath.Join(c.MetadataDir(), c.EndpointScheme+endpointCtl)
}
