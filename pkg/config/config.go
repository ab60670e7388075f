// Package config loads churnscope settings from defaults, an optional YAML
// file and CHURNSCOPE_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/churnscope/analysis"
	"github.com/ezoic/churnscope/core/table"
	"github.com/ezoic/churnscope/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. CHURNSCOPE_SPLIT_SEED.
const EnvPrefix = "CHURNSCOPE"

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "churnscope.yaml"

type Input struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

type Schema struct {
	ID              string   `mapstructure:"id" yaml:"id"`
	Target          string   `mapstructure:"target" yaml:"target"`
	PositiveLabel   string   `mapstructure:"positive_label" yaml:"positive_label"`
	Coerce          []string `mapstructure:"coerce" yaml:"coerce"`
	Numeric         []string `mapstructure:"numeric" yaml:"numeric"`
	OutlierFeatures []string `mapstructure:"outlier_features" yaml:"outlier_features"`
	ZThreshold      float64  `mapstructure:"z_threshold" yaml:"z_threshold"`
}

type Split struct {
	TestSize float64 `mapstructure:"test_size" yaml:"test_size"`
	Seed     int64   `mapstructure:"seed" yaml:"seed"`
}

// Model configures one logistic-regression fit.
type Model struct {
	Penalty     string  `mapstructure:"penalty" yaml:"penalty"`
	C           float64 `mapstructure:"c" yaml:"c"`
	MaxIter     int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol         float64 `mapstructure:"tol" yaml:"tol"`
	ClassWeight string  `mapstructure:"class_weight" yaml:"class_weight"`
}

type Report struct {
	// ChartsDir enables chart rendering when set.
	ChartsDir string `mapstructure:"charts_dir" yaml:"charts_dir"`
	TopN      int    `mapstructure:"top_n" yaml:"top_n"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the full churnscope configuration.
type Config struct {
	Input     Input  `mapstructure:"input" yaml:"input"`
	Schema    Schema `mapstructure:"schema" yaml:"schema"`
	Split     Split  `mapstructure:"split" yaml:"split"`
	Analyzer  Model  `mapstructure:"analyzer" yaml:"analyzer"`
	Evaluator Model  `mapstructure:"evaluator" yaml:"evaluator"`
	Report    Report `mapstructure:"report" yaml:"report"`
	Log       Log    `mapstructure:"log" yaml:"log"`
}

// Default returns the configuration of the reference analysis.
func Default() *Config {
	o := analysis.DefaultOptions()
	return &Config{
		Input: Input{Delimiter: string(o.Delimiter)},
		Schema: Schema{
			ID:              o.Schema.ID,
			Target:          o.Schema.Target,
			PositiveLabel:   o.Schema.PositiveLabel,
			Coerce:          o.Schema.Coerce,
			Numeric:         []string{},
			OutlierFeatures: o.Schema.OutlierFeatures,
			ZThreshold:      o.Schema.ZThreshold,
		},
		Split:     Split{TestSize: o.TestSize, Seed: o.Seed},
		Analyzer:  fromModelOptions(o.Analyzer),
		Evaluator: fromModelOptions(o.Evaluator),
		Report:    Report{TopN: 20},
		Log:       Log{Level: "info", Format: "json"},
	}
}

func fromModelOptions(m analysis.ModelOptions) Model {
	return Model{Penalty: m.Penalty, C: m.C, MaxIter: m.MaxIter, Tol: m.Tol, ClassWeight: m.ClassWeight}
}

func (m Model) options() analysis.ModelOptions {
	return analysis.ModelOptions{Penalty: m.Penalty, C: m.C, MaxIter: m.MaxIter, Tol: m.Tol, ClassWeight: m.ClassWeight}
}

// setDefaults registers every key so that AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("input.delimiter", c.Input.Delimiter)

	v.SetDefault("schema.id", c.Schema.ID)
	v.SetDefault("schema.target", c.Schema.Target)
	v.SetDefault("schema.positive_label", c.Schema.PositiveLabel)
	v.SetDefault("schema.coerce", c.Schema.Coerce)
	v.SetDefault("schema.numeric", c.Schema.Numeric)
	v.SetDefault("schema.outlier_features", c.Schema.OutlierFeatures)
	v.SetDefault("schema.z_threshold", c.Schema.ZThreshold)

	v.SetDefault("split.test_size", c.Split.TestSize)
	v.SetDefault("split.seed", c.Split.Seed)

	for prefix, m := range map[string]Model{"analyzer": c.Analyzer, "evaluator": c.Evaluator} {
		v.SetDefault(prefix+".penalty", m.Penalty)
		v.SetDefault(prefix+".c", m.C)
		v.SetDefault(prefix+".max_iter", m.MaxIter)
		v.SetDefault(prefix+".tol", m.Tol)
		v.SetDefault(prefix+".class_weight", m.ClassWeight)
	}

	v.SetDefault("report.charts_dir", c.Report.ChartsDir)
	v.SetDefault("report.top_n", c.Report.TopN)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
}

// Load reads configuration. Precedence: env > config file > defaults.
//
// With an empty path, churnscope.yaml in the working directory is read if
// it exists. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// Save writes c as YAML to path, creating parent directories.
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create config dir %s", dir)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return errors.NewValidationError("input.delimiter", "must be a single character", c.Input.Delimiter)
	}
	if !(c.Split.TestSize > 0 && c.Split.TestSize < 1) {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	}
	if err := c.Analyzer.validate("analyzer"); err != nil {
		return err
	}
	if err := c.Evaluator.validate("evaluator"); err != nil {
		return err
	}
	if c.Report.TopN < 1 {
		return errors.NewValidationError("report.top_n", "must be at least 1", c.Report.TopN)
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "console" {
		return errors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	return c.Options().Schema.Validate()
}

func (m Model) validate(prefix string) error {
	switch {
	case m.Penalty != "l2" && m.Penalty != "none":
		return errors.NewValidationError(prefix+".penalty", "must be l2 or none", m.Penalty)
	case !(m.C > 0):
		return errors.NewValidationError(prefix+".c", "must be positive", m.C)
	case m.MaxIter < 1:
		return errors.NewValidationError(prefix+".max_iter", "must be at least 1", m.MaxIter)
	case !(m.Tol > 0):
		return errors.NewValidationError(prefix+".tol", "must be positive", m.Tol)
	case m.ClassWeight != "balanced" && m.ClassWeight != "none":
		return errors.NewValidationError(prefix+".class_weight", "must be balanced or none", m.ClassWeight)
	}
	return nil
}

// Options converts c to analysis options.
func (c *Config) Options() analysis.Options {
	delim, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return analysis.Options{
		Schema: table.Schema{
			ID:              c.Schema.ID,
			Target:          c.Schema.Target,
			PositiveLabel:   c.Schema.PositiveLabel,
			Coerce:          c.Schema.Coerce,
			Numeric:         c.Schema.Numeric,
			OutlierFeatures: c.Schema.OutlierFeatures,
			ZThreshold:      c.Schema.ZThreshold,
		},
		Delimiter: delim,
		TestSize:  c.Split.TestSize,
		Seed:      c.Split.Seed,
		Analyzer:  c.Analyzer.options(),
		Evaluator: c.Evaluator.options(),
	}
}
