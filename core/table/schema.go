package table

import (
	"strings"

	"github.com/ezoic/churnscope/pkg/errors"
)

// Schema is the column contract checked when a file is loaded.
type Schema struct {
	// ID is the optional identifier column. It is never encoded or modelled.
	ID string
	// Target is the required label column.
	Target string
	// PositiveLabel is the Target value that marks the positive class.
	PositiveLabel string
	// Coerce lists required columns that are converted to numeric during
	// cleaning; unparseable values become missing.
	Coerce []string
	// Numeric lists required columns that must parse as numbers at load.
	Numeric []string
	// OutlierFeatures lists the columns for the z-score filter. Absent
	// columns are skipped, not rejected.
	OutlierFeatures []string
	// ZThreshold is the exclusive |z| bound for the outlier filter.
	ZThreshold float64
}

// TargetIndicator returns the name of the encoded target column, e.g. "Churn_Yes".
func (s Schema) TargetIndicator() string {
	return s.Target + "_" + s.PositiveLabel
}

// Required returns the columns that must be present in a loaded file.
func (s Schema) Required() []string {
	req := []string{s.Target}
	req = append(req, s.Coerce...)
	req = append(req, s.Numeric...)
	return req
}

// Validate checks the schema itself.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.Target) == "" {
		return errors.NewValidationError("schema.target", "must not be empty", s.Target)
	}
	if s.PositiveLabel == "" {
		return errors.NewValidationError("schema.positive_label", "must not be empty", s.PositiveLabel)
	}
	if s.ZThreshold <= 0 {
		return errors.NewValidationError("schema.z_threshold", "must be positive", s.ZThreshold)
	}
	if s.ID != "" && s.ID == s.Target {
		return errors.NewValidationError("schema.id", "must differ from target", s.ID)
	}
	return nil
}

// Check verifies that every required column is among names.
func (s Schema) Check(names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, r := range s.Required() {
		if !have[r] {
			return errors.NewColumnError("load", r, "required column missing")
		}
	}
	return nil
}

func (s Schema) kindOf(name string) (Kind, bool) {
	if name == s.ID && s.ID != "" {
		return Identifier, true
	}
	if name == s.Target {
		return Categorical, true
	}
	for _, c := range s.Coerce {
		if c == name {
			return Categorical, true
		}
	}
	for _, c := range s.Numeric {
		if c == name {
			return Numeric, true
		}
	}
	return 0, false
}
