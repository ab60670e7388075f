package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, ",", c.Input.Delimiter)
	assert.Equal(t, []string{"TotalCharges"}, c.Schema.Coerce)
	assert.Equal(t, []string{"tenure", "MonthlyCharges", "TotalCharges"}, c.Schema.OutlierFeatures)
	assert.Equal(t, int64(42), c.Split.Seed)
	assert.Equal(t, 1000, c.Analyzer.MaxIter)
	assert.Equal(t, 2000, c.Evaluator.MaxIter)
	assert.Equal(t, "balanced", c.Evaluator.ClassWeight)
	assert.Equal(t, 20, c.Report.TopN)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.Schema.OutlierFeatures, c.Schema.OutlierFeatures)
	assert.Equal(t, d.Split, c.Split)
	assert.Equal(t, d.Analyzer, c.Analyzer)
	assert.Equal(t, d.Evaluator, c.Evaluator)
	assert.Equal(t, d.Log, c.Log)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "churnscope.yaml")
	c := Default()
	c.Split.Seed = 7
	c.Schema.OutlierFeatures = []string{"tenure"}
	c.Report.ChartsDir = "out/charts"
	require.NoError(t, Save(c, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.Split.Seed)
	assert.Equal(t, []string{"tenure"}, loaded.Schema.OutlierFeatures)
	assert.Equal(t, "out/charts", loaded.Report.ChartsDir)
	assert.Equal(t, 2000, loaded.Evaluator.MaxIter)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("split:\n  test_size: 0.3\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, c.Split.TestSize, 1e-12)
	assert.Equal(t, int64(42), c.Split.Seed)
	assert.Equal(t, "Churn", c.Schema.Target)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("split:\n  seed: 1\n"), 0o644))
	t.Setenv("CHURNSCOPE_SPLIT_SEED", "99")
	t.Setenv("CHURNSCOPE_LOG_LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), c.Split.Seed)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"delimiter", func(c *Config) { c.Input.Delimiter = ";;" }},
		{"test size", func(c *Config) { c.Split.TestSize = 0 }},
		{"penalty", func(c *Config) { c.Analyzer.Penalty = "l1" }},
		{"C", func(c *Config) { c.Evaluator.C = 0 }},
		{"max iter", func(c *Config) { c.Evaluator.MaxIter = 0 }},
		{"class weight", func(c *Config) { c.Evaluator.ClassWeight = "auto" }},
		{"top n", func(c *Config) { c.Report.TopN = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"z threshold", func(c *Config) { c.Schema.ZThreshold = -1 }},
		{"target", func(c *Config) { c.Schema.Target = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected %s to be rejected", tt.name)
			}
		})
	}
}

func TestOptionsMapping(t *testing.T) {
	c := Default()
	c.Input.Delimiter = ";"
	c.Split.TestSize = 0.25

	o := c.Options()
	assert.Equal(t, ';', o.Delimiter)
	assert.Equal(t, 0.25, o.TestSize)
	assert.Equal(t, "Churn_Yes", o.Schema.TargetIndicator())
	assert.Equal(t, "balanced", o.Evaluator.ClassWeight)
	require.NoError(t, o.Validate())
}
