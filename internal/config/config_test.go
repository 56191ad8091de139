package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/taggablefs/tagfs/internal/util"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values")
}

func TestConfig_Merge_AllFields(t *testing.T) {
	t.Parallel()

	override := createOverride()
	cfg := NewDefaultConfig()
	cfg.Merge(override)

	assert.Equal(t, *override.MountPoint, cfg.MountPoint)
	assert.Equal(t, *override.RootDir, cfg.RootDir)
	assert.Equal(t, *override.ProgramName, cfg.ProgramName)
	assert.Equal(t, *override.TagView, cfg.TagView)
	assert.Equal(t, *override.EnableLogging, cfg.EnableLogging)
	assert.Equal(t, *override.LogLevel, cfg.LogLevel)
	assert.Equal(t, *override.EndpointScheme, cfg.EndpointScheme)
}

func TestConfig_Merge_NilOverrideFields(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Merge(&ConfigOverride{})

	assert.Equal(t, createDefaultCfg(), cfg, "must leave defaults untouched")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.Merge(&ConfigOverride{
		RootDir: util.Pointer("/srv/tagfs"),
		TagView: util.Pointer(true),
	})

	expected := createDefaultCfg()
	expected.RootDir = "/srv/tagfs"
	expected.TagView = true

	assert.Equal(t, expected, cfg)
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func(*ConfigOverride) ([]byte, error)
	}
	cases := []tc{
		{".yaml", func(v *ConfigOverride) ([]byte, error) { return yaml.Marshal(v) }},
		{".yml", func(v *ConfigOverride) ([]byte, error) { return yaml.Marshal(v) }},
		{".json", func(v *ConfigOverride) ([]byte, error) { return json.Marshal(v) }},
	}

	for _, c := range cases {
		c := c
		t.Run(c.ext, func(t *testing.T) {
			t.Parallel()

			override := createOverride()
			data, err := c.build(override)
			require.NoError(t, err)

			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("root_dir: /srv"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
}

func TestConfig_EndpointPaths(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.RootDir = "/srv/tagfs"

	assert.Equal(t, "/srv/tagfs/metadata", cfg.MetadataDir())
	assert.Equal(t, "/srv/tagfs/metadata/fs.db", cfg.DBPath())
	assert.Equal(t, "/srv/tagfs/metadata/tagfs.mgr", cfg.InboundEndpoint())
	assert.Equal(t, "/srv/tagfs/metadata/tagfs.bridge", cfg.BridgeEndpoint())
	assert.Equal(t, "/srv/tagfs/metadata/tagfs.ctl", cfg.CtlEndpoint())
}

func createDefaultCfg() *Config {
	return &Config{
		ProgramName:    "tagfsd",
		TagView:        DefaultTagView,
		EnableLogging:  DefaultEnableLogging,
		LogLevel:       DefaultLogLevel,
		EndpointScheme: DefaultEndpointScheme,
	}
}

func createOverride() *ConfigOverride {
	return &ConfigOverride{
		MountPoint:     util.Pointer("/mnt/tagfs"),
		RootDir:        util.Pointer("/srv/tagfs"),
		ProgramName:    util.Pointer("test_tagfsd"),
		TagView:        util.Pointer(true),
		EnableLogging:  util.Pointer(true),
		LogLevel:       util.Pointer(util.TraceLevel),
		EndpointScheme: util.Pointer("testfs"),
	}
}
