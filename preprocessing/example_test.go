package preprocessing_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/churnscope/preprocessing"
)

// ExampleStandardScaler demonstrates basic usage of StandardScaler
func ExampleStandardScaler() {
	// Create sample training data
	data := []float64{
		1.0, 2.0,
		3.0, 4.0,
		5.0, 6.0,
		7.0, 8.0,
	}
	X := mat.NewDense(4, 2, data)

	// Create and fit scaler
	scaler := preprocessing.NewStandardScaler(true, true)
	err := scaler.Fit(X)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Transform the data
	scaled, err := scaler.Transform(X)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Print first row of scaled data
	fmt.Printf("Scaled first row: [%.2f, %.2f]\n", scaled.At(0, 0), scaled.At(0, 1))

	// Output: Scaled first row: [-1.34, -1.34]
}

// ExampleStandardScaler_fitTransform demonstrates FitTransform usage
func ExampleStandardScaler_fitTransform() {
	// Create sample data
	data := []float64{
		10.0, 100.0,
		20.0, 200.0,
		30.0, 300.0,
	}
	X := mat.NewDense(3, 2, data)

	// Create scaler and fit+transform in one step
	scaler := preprocessing.NewStandardScaler(true, true)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Check that scaler is now fitted
	if scaler.IsFitted() {
		fmt.Println("Scaler is fitted")
	}

	// Print dimensions
	r, c := scaled.Dims()
	fmt.Printf("Scaled data shape: (%d, %d)\n", r, c)

	// Output: Scaler is fitted
	// Scaled data shape: (3, 2)
}

// ExampleOneHotEncoder demonstrates OneHotEncoder usage
func ExampleOneHotEncoder() {
	// Create sample categorical data
	data := [][]string{
		{"No"},
		{"Fiber optic"},
		{"DSL"},
		{"No"},
	}

	// Create and fit encoder, dropping the reference category
	encoder := preprocessing.NewOneHotEncoder(true)
	err := encoder.Fit(data)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Transform the data
	encoded, err := encoder.Transform(data)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Print feature names
	features := encoder.GetFeatureNamesOut([]string{"InternetService"})
	fmt.Printf("Features: %v\n", features)

	// Print encoded shape
	r, c := encoded.Dims()
	fmt.Printf("Encoded shape: (%d, %d)\n", r, c)

	// Output: Features: [InternetService_Fiber optic InternetService_No]
	// Encoded shape: (4, 2)
}

// ExampleSimpleImputer demonstrates mean imputation learned on training data
func ExampleSimpleImputer() {
	nan := math.NaN()
	train := mat.NewDense(3, 1, []float64{1, nan, 5})
	test := mat.NewDense(2, 1, []float64{nan, 7})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	if err := imputer.Fit(train); err != nil {
		return
	}

	filled, err := imputer.Transform(test)
	if err != nil {
		return
	}

	fmt.Printf("Test filled: [%.1f, %.1f]\n", filled.At(0, 0), filled.At(1, 0))

	// Output: Test filled: [3.0, 7.0]
}
