// Package report renders an analysis.Result as a plain-text report and as
// PNG charts.
//
// The text report is deterministic: the same input and seed always produce
// byte-identical output.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/analysis"
)

// Section titles, in output order.
const (
	SectionMissing     = "Missing values per column"
	SectionColumns     = "Columns in the dataset"
	SectionSkipped     = "Skipped features"
	SectionKinds       = "Column kinds"
	SectionCorrelation = "Correlation matrix"
	SectionImportance  = "Feature importance"
	SectionSplit       = "Split summary"
	SectionChecks      = "X_train checks"
	SectionLabels      = "Train label counts"
	SectionEvaluation  = "Classification report"
)

// Sections lists every section title in output order.
var Sections = []string{
	SectionMissing, SectionColumns, SectionSkipped, SectionKinds, SectionCorrelation,
	SectionImportance, SectionSplit, SectionChecks, SectionLabels, SectionEvaluation,
}

// Write renders res to w. Sections whose stage did not run are omitted, so
// an Inspect result yields the first six sections.
func Write(w io.Writer, res *analysis.Result) error {
	rw := &writer{w: w}
	if res.Clean != nil {
		rw.missing(res.Clean)
		rw.columns(res.Clean)
		rw.skipped(res.Clean)
		rw.kinds(res.Clean)
	}
	if res.Analyze != nil {
		rw.correlation(res.Analyze)
		rw.importance(res.Analyze)
	}
	if res.Split != nil {
		rw.split(res.Split)
		rw.checks(res.Split)
		rw.labels(res.Split)
	}
	if res.Eval != nil {
		rw.evaluation(res.Eval)
	}
	return rw.err
}

// writer latches the first write error.
type writer struct {
	w   io.Writer
	err error
}

func (rw *writer) printf(format string, args ...interface{}) {
	if rw.err != nil {
		return
	}
	_, rw.err = fmt.Fprintf(rw.w, format, args...)
}

func (rw *writer) header(title string) {
	rw.printf("== %s ==\n", title)
}

// table writes rows through a tabwriter. Cells are tab-separated.
func (rw *writer) table(rows []string) {
	if rw.err != nil {
		return
	}
	tw := tabwriter.NewWriter(rw.w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if _, rw.err = fmt.Fprintln(tw, r); rw.err != nil {
			return
		}
	}
	rw.err = tw.Flush()
}

func (rw *writer) missing(c *analysis.CleanResult) {
	rw.header(SectionMissing)
	rows := make([]string, len(c.Missing))
	for i, m := range c.Missing {
		rows[i] = fmt.Sprintf("%s\t%d", m.Name, m.Count)
	}
	rw.table(rows)
	rw.printf("\n")
}

func (rw *writer) columns(c *analysis.CleanResult) {
	rw.header(SectionColumns)
	rw.printf("%s\n", list(c.Columns))
	rw.printf("rows: loaded %d, coerced to missing %d, dropped incomplete %d, dropped outliers %d, kept %d\n\n",
		c.Loaded, c.Coerced, c.DroppedMissing, c.ZScore.Dropped(), c.Table.NumRows())
}

func (rw *writer) skipped(c *analysis.CleanResult) {
	rw.header(SectionSkipped)
	if len(c.Skipped()) == 0 {
		rw.printf("(none)\n")
	}
	for _, f := range c.Skipped() {
		rw.printf("Feature '%s' not found in the dataset.\n", f)
	}
	for _, s := range c.ZScore.Steps {
		if s.Constant {
			rw.printf("Feature '%s' has zero deviation; no rows filtered.\n", s.Feature)
		}
	}
	rw.printf("\n")
}

func (rw *writer) kinds(c *analysis.CleanResult) {
	rw.header(SectionKinds)
	rows := make([]string, len(c.Kinds))
	for i, k := range c.Kinds {
		rows[i] = fmt.Sprintf("%s\t%s", k.Name, k.Kind)
	}
	rw.table(rows)
	rw.printf("\n")
}

func (rw *writer) correlation(a *analysis.AnalyzeResult) {
	rw.header(SectionCorrelation)
	names := a.Correlation.Names
	rows := []string{"\t" + strings.Join(names, "\t")}
	for i, n := range names {
		cells := []string{n}
		for j := range names {
			cells = append(cells, fmt.Sprintf("%.4f", a.Correlation.At(i, j)))
		}
		rows = append(rows, strings.Join(cells, "\t"))
	}
	rw.table(rows)
	rw.printf("\n")
}

func (rw *writer) importance(a *analysis.AnalyzeResult) {
	rw.header(SectionImportance)
	rows := make([]string, len(a.Importance))
	for i, f := range a.Importance {
		rows[i] = fmt.Sprintf("%s\t%.6f", f.Feature, f.Coefficient)
	}
	rw.table(rows)
	rw.printf("intercept: %.6f, iterations: %d, converged: %t\n\n", a.Intercept, a.Iterations, a.Converged)
}

func (rw *writer) split(s *analysis.SplitResult) {
	rw.header(SectionSplit)
	rw.printf("train rows: %d, test rows: %d\n", len(s.Split.Train), len(s.Split.Test))
	rw.printf("Training Data Columns:\n%s\n", list(s.TrainColumns))
	rw.printf("Test Data Columns:\n%s\n", list(s.TestColumns))
	rw.printf("Columns in Training Data after drop:\n%s\n", list(s.TrainColumnsDropped))
	rw.printf("Columns in Test Data after drop:\n%s\n", list(s.TestColumnsDropped))
	if len(s.ZeroVariance) > 0 {
		rw.printf("zero-variance columns (centered only): %s\n", list(s.ZeroVariance))
	}
	rw.printf("\n")
}

func (rw *writer) checks(s *analysis.SplitResult) {
	rw.header(SectionChecks)
	rows := []string{"column\tnan\tinf\tcount\tmean\tstd\tmin\tmax"}
	for _, c := range s.Summary {
		rows = append(rows, fmt.Sprintf("%s\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f",
			c.Name, c.NaN, c.Inf, c.Count, c.Mean, c.Std, c.Min, c.Max))
	}
	rw.table(rows)
	rw.printf("\n")
}

func (rw *writer) labels(s *analysis.SplitResult) {
	rw.header(SectionLabels)
	counts := s.LabelCounts()
	rw.table([]string{
		fmt.Sprintf("%s=0\t%d", s.Target, counts[0]),
		fmt.Sprintf("%s=1\t%d", s.Target, counts[1]),
	})
	rw.printf("\n")
}

func (rw *writer) evaluation(e *analysis.EvalResult) {
	rw.header(SectionEvaluation)
	rw.printf("%s\n", e.Report)
	rw.printf("Accuracy Score: %.4f\n", e.Accuracy)
	rw.printf("ROC AUC: %.4f\n", e.AUC)
	rw.printf("Log loss: %.4f\n", e.LogLoss)
	rw.printf("Confusion matrix [[TN FP] [FN TP]]:\n%v\n", mat.Formatted(e.Confusion, mat.Squeeze()))
	rw.printf("class weights: %.4f / %.4f, iterations: %d, converged: %t\n",
		e.ClassWeights[0], e.ClassWeights[1], e.Iterations, e.Converged)
}

func list(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}
