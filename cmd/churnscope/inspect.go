package main

import (
	"github.com/spf13/cobra"

	"github.com/ezoic/churnscope/analysis"
)

func newInspectCmd(a *app) *cobra.Command {
	var charts chartFlags
	cmd := &cobra.Command{
		Use:   "inspect <csv>",
		Short: "Clean a churn table and rank features without evaluating a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charts.apply(cmd, a)
			res, err := a.analyze(args[0], analysis.Inspect)
			if err != nil {
				return err
			}
			return a.publish(cmd, res)
		},
	}
	charts.register(cmd)
	return cmd
}
