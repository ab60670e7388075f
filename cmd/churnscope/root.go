package main

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ezoic/churnscope/analysis"
	"github.com/ezoic/churnscope/pkg/config"
	"github.com/ezoic/churnscope/pkg/errors"
	"github.com/ezoic/churnscope/pkg/log"
	"github.com/ezoic/churnscope/report"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "churnscope",
		Short: "Customer churn analysis with logistic regression",
		Long: `churnscope cleans a customer table, ranks churn drivers with an L2 logistic
regression and evaluates a class-balanced model on a held-out split.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./"+config.DefaultFileName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newRunCmd(a), newInspectCmd(a), newConfigCmd(a))
	return root
}

// setup loads configuration and installs the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		c.Log.Level = a.logLevel
	}
	log.SetupLogger(c.Log.Level, c.Log.Format, cmd.ErrOrStderr())
	a.cfg = c
	a.logger = log.GetLoggerWithName("churnscope").With(log.RunIDKey, uuid.NewString())
	return nil
}

func (a *app) options() analysis.Options {
	opts := a.cfg.Options()
	opts.Logger = a.logger
	return opts
}

// analyze opens path, validates the effective configuration and runs fn on it.
func (a *app) analyze(path string, fn func(io.Reader, analysis.Options) (*analysis.Result, error)) (*analysis.Result, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	a.logger.Info("Analysis started", log.PathKey, path)
	res, err := fn(f, a.options())
	if err != nil {
		return nil, errors.Wrapf(err, "analyze %s", path)
	}
	return res, nil
}

// publish writes the text report and, when a charts directory is set, the charts.
func (a *app) publish(cmd *cobra.Command, res *analysis.Result) error {
	if err := report.Write(cmd.OutOrStdout(), res); err != nil {
		return errors.Wrap(err, "write report")
	}
	if a.cfg.Report.ChartsDir == "" {
		return nil
	}
	_, err := report.RenderCharts(a.cfg.Report.ChartsDir, res.Analyze, a.cfg.Report.TopN)
	return err
}
