package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("SALESBI_ENV", Test)

	c := GetConfig()

	assert.Equal(t, "salesbi", c.AppName)
	assert.Equal(t, filepath.Join("data", "Sales_data.xlsx"), c.DatasetPath)
	assert.Equal(t, TopNModeConcat, c.TopNMode)
	assert.False(t, c.UseFirstNumber())
	assert.Equal(t, 90, c.HistoryRetentionDays)
	assert.Equal(t, filepath.Join("storage", "salesbi-test.db"), c.DatabaseName)
	assert.Equal(t, 1, c.GetMaxOpenConns())
	assert.True(t, c.IsTest())
	assert.Empty(t, c.APIKey)
}

func TestGetConfigFromEnvironment(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("SALESBI_ENV", Test)
	t.Setenv("SALESBI_DATASET_PATH", "/tmp/sales.csv")
	t.Setenv("SALESBI_TOP_N_MODE", TopNModeFirst)
	t.Setenv("SALESBI_HISTORY_RETENTION_DAYS", "7")
	t.Setenv("SALESBI_API_KEY", "s3cret")

	c := GetConfig()

	assert.Equal(t, "/tmp/sales.csv", c.DatasetPath)
	assert.True(t, c.UseFirstNumber())
	assert.Equal(t, 7, c.HistoryRetentionDays)
	assert.Equal(t, "s3cret", c.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: Test,
			TopNMode:    TopNModeConcat,
			DatasetPath: "sales.xlsx",
			PrivateKey:  defaultPrivateKey,
		}
	}

	require.NoError(t, valid().validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown environment", func(c *Config) { c.Environment = "staging" }},
		{"unknown top-n mode", func(c *Config) { c.TopNMode = "last" }},
		{"empty dataset path", func(c *Config) { c.DatasetPath = "" }},
		{"empty private key", func(c *Config) { c.PrivateKey = "" }},
		{"negative retention", func(c *Config) { c.HistoryRetentionDays = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.validate())
		})
	}
}
