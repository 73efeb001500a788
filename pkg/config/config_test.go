package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raytracer.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.S3.Enabled())
	assert.Positive(t, cfg.Render.EffectiveWorkers())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[render]
workers = 3
tile_size = 16
mode = "depth"
gamma = 2.2

[output]
path = "out/frame.tiff"
thumbnail_width = 64

[s3]
bucket = "renders"
prefix = "frames/"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Render.Workers)
	assert.Equal(t, 3, cfg.Render.EffectiveWorkers())
	assert.Equal(t, 16, cfg.Render.TileSize)
	assert.Equal(t, ModeDepth, cfg.Render.Mode)
	assert.Equal(t, 2.2, cfg.Render.Gamma)
	assert.Equal(t, -1, cfg.Render.MaxDepth, "unset keys keep their defaults")
	assert.Equal(t, "out/frame.tiff", cfg.Output.Path)
	assert.Equal(t, 64, cfg.Output.ThumbnailWidth)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.True(t, cfg.S3.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "[render]\nthreads = 4\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, "[render\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"S3_ACCESS_KEY": "key",
		"S3_SECRET_KEY": "secret",
		"S3_BUCKET":     "bucket",
		"S3_REGION":     "",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := Default()
	cfg.ApplyEnv(lookup)

	assert.Equal(t, "key", cfg.S3.AccessKey)
	assert.Equal(t, "secret", cfg.S3.SecretKey)
	assert.Equal(t, "bucket", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region, "empty values do not override")
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Render.Workers = -1 }},
		{"zero tile size", func(c *Config) { c.Render.TileSize = 0 }},
		{"depth below -1", func(c *Config) { c.Render.MaxDepth = -2 }},
		{"depth above limit", func(c *Config) { c.Render.MaxDepth = 65 }},
		{"zero gamma", func(c *Config) { c.Render.Gamma = 0 }},
		{"unknown mode", func(c *Config) { c.Render.Mode = "normals" }},
		{"negative width", func(c *Config) { c.Render.Width = -5 }},
		{"negative thumbnail", func(c *Config) { c.Output.ThumbnailWidth = -1 }},
		{"zero max pixels", func(c *Config) { c.Server.MaxPixels = 0 }},
		{"half credentials", func(c *Config) {
			c.S3.Bucket = "b"
			c.S3.AccessKey = "k"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
