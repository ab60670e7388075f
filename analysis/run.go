package analysis

import (
	"io"
)

// Result collects the output of every stage.
type Result struct {
	Options Options

	Load    *LoadSummary
	Clean   *CleanResult
	Analyze *AnalyzeResult
	Split   *SplitResult
	Eval    *EvalResult
}

// LoadSummary describes the file as read.
type LoadSummary struct {
	Rows    int
	Columns []string
}

// Inspect runs Load, Clean and Analyze.
func Inspect(r io.Reader, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t, info, err := Load(r, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Options: opts, Load: &LoadSummary{Rows: info.Rows, Columns: info.Columns}}

	if res.Clean, err = Clean(t, info, opts); err != nil {
		return nil, err
	}
	if res.Analyze, err = Analyze(res.Clean.Table, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// Run executes Load → Clean → Analyze → Split → Normalize → Fit → Predict.
// Rendering the report is left to the caller.
func Run(r io.Reader, opts Options) (*Result, error) {
	res, err := Inspect(r, opts)
	if err != nil {
		return nil, err
	}
	if res.Split, err = Split(res.Clean.Table, opts); err != nil {
		return nil, err
	}
	if res.Eval, err = Evaluate(res.Split, opts); err != nil {
		return nil, err
	}
	return res, nil
}
