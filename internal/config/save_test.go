package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDefaults_CreatesNewFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	defaults := DefaultsConfig{
		Model:    "sd15.safetensors",
		Width:    512,
		Height:   768,
		Negative: "text, watermark",
	}

	err := SaveDefaults(configPath, defaults)
	require.NoError(t, err)

	// Verify file exists
	_, err = os.Stat(configPath)
	require.NoError(t, err)

	// Verify content
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "model: sd15.safetensors")
	assert.Contains(t, string(data), "width: 512")
	assert.Contains(t, string(data), "negative: text, watermark")
}

func TestSaveDefaults_PreservesOtherConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	// Create initial config with various settings
	initial := `server:
  url: http://gpu-box:8188
history:
  enabled: false
`
	err := os.WriteFile(configPath, []byte(initial), 0o644)
	require.NoError(t, err)

	err = SaveDefaults(configPath, DefaultsConfig{Model: "sdxl.safetensors"})
	require.NoError(t, err)

	// Verify other settings preserved
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "url: http://gpu-box:8188")
	assert.Contains(t, content, "enabled: false")
	// And the new defaults are there
	assert.Contains(t, content, "model: sdxl.safetensors")
}

func TestSaveDefaults_Roundtrip(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	original := DefaultsConfig{
		Model:    "v1-5-pruned-emaonly.safetensors",
		Width:    1024,
		Height:   1024,
		Negative: "blurry, low quality",
	}

	err := SaveDefaults(configPath, original)
	require.NoError(t, err)

	// Load back using Viper
	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var loaded DefaultsConfig
	require.NoError(t, v.UnmarshalKey("defaults", &loaded))

	assert.Equal(t, original.Model, loaded.Model)
	assert.Equal(t, original.Width, loaded.Width)
	assert.Equal(t, original.Height, loaded.Height)
	assert.Equal(t, original.Negative, loaded.Negative)
}

func TestSaveDefaults_ReplacesExistingSection(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	require.NoError(t, SaveDefaults(configPath, DefaultsConfig{Model: "first.safetensors"}))
	require.NoError(t, SaveDefaults(configPath, DefaultsConfig{Model: "second.safetensors"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second.safetensors")
	assert.NotContains(t, string(data), "first.safetensors")
}

func TestSaveDefaults_OmitsZeroFields(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	err := SaveDefaults(configPath, DefaultsConfig{Model: "sd15.safetensors"})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "model: sd15.safetensors")

	// Zero values mean "keep the template's own" and must not be written
	assert.NotContains(t, content, "width:")
	assert.NotContains(t, content, "height:")
	assert.NotContains(t, content, "negative:")
}

func TestSaveDefaults_AtomicWrite(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	require.NoError(t, SaveDefaults(configPath, DefaultsConfig{Model: "initial.safetensors"}))
	require.NoError(t, SaveDefaults(configPath, DefaultsConfig{Model: "updated.safetensors"}))

	// Check no temp files left behind
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, filepath.Ext(entry.Name()) == ".tmp", "temp file left behind: %s", entry.Name())
	}

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "updated.safetensors")
}

func TestSaveDefaults_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir", "nested", "config.yaml")

	err := SaveDefaults(configPath, DefaultsConfig{Model: "sd15.safetensors"})
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)
}

func TestSaveServer(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	// Start from the commented default template
	require.NoError(t, os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600))

	err := SaveServer(configPath, ServerConfig{URL: "http://gpu-box:8188"})
	require.NoError(t, err)

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var loaded ServerConfig
	require.NoError(t, v.UnmarshalKey("server", &loaded))
	assert.Equal(t, "http://gpu-box:8188", loaded.URL)

	// Other sections from the template survive the rewrite
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history:")
}
