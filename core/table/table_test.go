package table

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scigoErrors "github.com/ezoic/churnscope/pkg/errors"
)

func churnSchema() Schema {
	return Schema{
		ID:              "customerID",
		Target:          "Churn",
		PositiveLabel:   "Yes",
		Coerce:          []string{"TotalCharges"},
		OutlierFeatures: []string{"tenure", "MonthlyCharges", "TotalCharges"},
		ZThreshold:      3,
	}
}

const sampleCSV = `customerID,gender,SeniorCitizen,tenure,MonthlyCharges,TotalCharges,Churn
0001-A,Female,0,1,29.85,29.85,No
0002-B,Male,0,34,56.95,1889.5,No
0003-C,Male,1,2,53.85,108.15,Yes
0004-D,Female,0,0,42.30, ,No
0005-E,,1,8,99.65,NA,Yes
`

func TestReadCSVKinds(t *testing.T) {
	tbl, info, err := ReadCSV(strings.NewReader(sampleCSV), churnSchema())
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.NumRows())
	assert.Equal(t, 7, tbl.NumCols())
	assert.Equal(t, info.Columns, tbl.Names())

	kinds := map[string]Kind{
		"customerID":     Identifier,
		"gender":         Categorical,
		"SeniorCitizen":  Numeric,
		"tenure":         Numeric,
		"MonthlyCharges": Numeric,
		"TotalCharges":   Categorical,
		"Churn":          Categorical,
	}
	for name, want := range kinds {
		c, ok := tbl.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, want, c.Kind(), name)
	}

	missing := map[string]int{}
	for _, m := range info.Missing {
		missing[m.Name] = m.Count
	}
	assert.Equal(t, 1, missing["gender"])
	assert.Equal(t, 1, missing["TotalCharges"], "only NA counts, a blank stays a value")
	assert.Equal(t, 0, missing["tenure"])

	tc, _ := tbl.Column("TotalCharges")
	assert.Equal(t, " ", tc.Str(3))
	assert.True(t, tc.IsMissing(4))
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	csv := "customerID,tenure,Churn\nA,1,No\n"
	_, _, err := ReadCSV(strings.NewReader(csv), churnSchema())
	require.Error(t, err)

	var colErr *scigoErrors.ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "load", colErr.Stage)
	assert.Equal(t, "TotalCharges", colErr.Column)
}

func TestReadCSVDeclaredNumericRejectsText(t *testing.T) {
	s := churnSchema()
	s.Numeric = []string{"tenure"}
	csv := "tenure,TotalCharges,Churn\nabc,1,No\n"
	_, _, err := ReadCSV(strings.NewReader(csv), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenure")
}

func TestReadCSVDelimiter(t *testing.T) {
	csv := "tenure;TotalCharges;Churn\n1;2.5;Yes\n3;4;No\n"
	tbl, _, err := ReadCSV(strings.NewReader(csv), churnSchema(), WithDelimiter(';'))
	require.NoError(t, err)
	assert.Equal(t, []string{"tenure", "TotalCharges", "Churn"}, tbl.Names())

	tc, _ := tbl.Column("TotalCharges")
	assert.Equal(t, Categorical, tc.Kind(), "coerce columns stay textual until cleaning")
}

func TestSchemaValidate(t *testing.T) {
	s := churnSchema()
	require.NoError(t, s.Validate())

	s.ZThreshold = 0
	assert.Error(t, s.Validate())

	s = churnSchema()
	s.Target = ""
	assert.Error(t, s.Validate())
	assert.Equal(t, "Churn_Yes", churnSchema().TargetIndicator())
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		NewStringColumn("id", Identifier, []string{"a", "b", "c", "d"}),
		NewNumericColumn("Monthly Charges", []float64{1, 2, math.NaN(), 4}),
		NewStringColumn("Contract", Categorical, []string{"x", "y", "", "x"}),
	)
	require.NoError(t, err)
	return tbl
}

func TestTableImmutableOperations(t *testing.T) {
	tbl := newTestTable(t)

	filtered := tbl.Filter(func(i int) bool { return i%2 == 0 })
	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, 4, tbl.NumRows())

	taken := tbl.Take([]int{3, 0})
	id, _ := taken.Column("id")
	assert.Equal(t, []string{"d", "a"}, id.Strings())

	dropped := tbl.Drop("id", "absent")
	assert.Equal(t, []string{"Monthly Charges", "Contract"}, dropped.Names())
	assert.True(t, tbl.Has("id"))

	mc, _ := tbl.Column("Monthly Charges")
	assert.Equal(t, 1, mc.MissingCount())
	ct, _ := tbl.Column("Contract")
	assert.Equal(t, 1, ct.MissingCount())
}

func TestTableRenameAndCollision(t *testing.T) {
	tbl := newTestTable(t)

	renamed, err := tbl.Rename(NormalizeName)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "monthly_charges", "contract"}, renamed.Names())

	clash, err := New(
		NewNumericColumn("Total Charges", []float64{1}),
		NewNumericColumn("total_charges", []float64{2}),
	)
	require.NoError(t, err)
	_, err = clash.Rename(NormalizeName)
	require.Error(t, err)

	var colErr *scigoErrors.ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "total_charges", colErr.Column)
}

func TestTableWithColumnAndMatrix(t *testing.T) {
	tbl := newTestTable(t)

	replaced, err := tbl.WithColumn(NewNumericColumn("Monthly Charges", []float64{5, 6, 7, 8}))
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), replaced.Names())

	added, err := replaced.WithColumn(NewIndicatorColumn("Contract_y", []float64{0, 1, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Monthly Charges", "Contract_y"}, added.NamesOfKind(Numeric, Indicator))

	m, err := added.Matrix("Monthly Charges", "Contract_y")
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.0, m.At(1, 1))

	_, err = added.Matrix("Contract")
	assert.Error(t, err)

	_, err = tbl.WithColumn(NewNumericColumn("short", []float64{1}))
	assert.Error(t, err)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(NewNumericColumn("a", []float64{1}), NewNumericColumn("a", []float64{2}))
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		" Monthly Charges ": "monthly_charges",
		"customerID":        "customerid",
		"Churn_Yes":         "churn_yes",
		"PaymentMethod_Bank transfer (automatic)": "paymentmethod_bank_transfer_(automatic)",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
