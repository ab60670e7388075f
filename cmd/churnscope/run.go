package main

import (
	"github.com/spf13/cobra"

	"github.com/ezoic/churnscope/analysis"
)

// chartFlags are shared by run and inspect.
type chartFlags struct {
	dir  string
	topN int
}

func (c *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.dir, "charts-dir", "", "write PNG charts into this directory (overrides config)")
	cmd.Flags().IntVar(&c.topN, "top-n", 0, "number of features in the importance chart (overrides config)")
}

func (c *chartFlags) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("charts-dir") {
		a.cfg.Report.ChartsDir = c.dir
	}
	if cmd.Flags().Changed("top-n") {
		a.cfg.Report.TopN = c.topN
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		seed     int64
		testSize float64
		charts   chartFlags
	)
	cmd := &cobra.Command{
		Use:   "run <csv>",
		Short: "Clean, analyze, split and evaluate a churn table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("seed") {
				a.cfg.Split.Seed = seed
			}
			if f.Changed("test-size") {
				a.cfg.Split.TestSize = testSize
			}
			charts.apply(cmd, a)

			res, err := a.analyze(args[0], analysis.Run)
			if err != nil {
				return err
			}
			return a.publish(cmd, res)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "train/test split seed (overrides config)")
	cmd.Flags().Float64Var(&testSize, "test-size", 0, "held-out fraction in (0, 1) (overrides config)")
	charts.register(cmd)
	return cmd
}
